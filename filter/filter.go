// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filter implements the SNV filter pipeline (§4.E): a configured
// ordered list of stages, each annotating every variant on a sequence with
// a (filter_name, threshold) -> failed boolean, idempotently.
package filter

import (
	"fmt"

	"github.com/OpenSourceCancer/franklin/seq"
	"github.com/OpenSourceCancer/franklin/variant"
)

// SequenceVariants pairs a sequence with the variants discovered on it; it
// is the unit of work that flows through the pipeline.
type SequenceVariants struct {
	Sequence *seq.Sequence
	Variants []*variant.Variant
}

// Source yields SequenceVariants items, one reference/amplicon at a time.
// It mirrors the pull-iterator contract used throughout the module (§5):
// single pass, Next returns io.EOF at the end of the stream.
type Source interface {
	Next() (*SequenceVariants, error)
}

// Stage is a single pipeline step. Mapper stages annotate every variant on
// the item and always return it; predicate stages may drop the item by
// returning ok=false.
type Stage interface {
	Apply(sv *SequenceVariants) (out *SequenceVariants, ok bool, err error)
}

// Pipeline is a configured, ordered list of Stages.
type Pipeline struct {
	stages []Stage
}

// New constructs a Pipeline from stages, applied in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run wraps src, lazily applying every stage to each item pulled from it.
func (p *Pipeline) Run(src Source) Source {
	return &pipelineSource{src: src, stages: p.stages}
}

type pipelineSource struct {
	src    Source
	stages []Stage
}

func (p *pipelineSource) Next() (*SequenceVariants, error) {
	for {
		sv, err := p.src.Next()
		if err != nil {
			return nil, err
		}
		kept := true
		for _, stage := range p.stages {
			sv, kept, err = stage.Apply(sv)
			if err != nil {
				return nil, err
			}
			if !kept {
				break
			}
		}
		if kept {
			return sv, nil
		}
	}
}

// MapperFunc computes a filter's failed/passed result for a single variant.
type MapperFunc func(v *variant.Variant, sv *SequenceVariants) (failed bool, err error)

// Mapper is a Stage that annotates every variant on an item with
// (Name, ThresholdKey) -> failed, skipping variants that already carry that
// key (idempotent per §4.E).
type Mapper struct {
	Name         string
	ThresholdKey string
	Fn           MapperFunc
}

// Apply implements Stage.
func (m *Mapper) Apply(sv *SequenceVariants) (*SequenceVariants, bool, error) {
	for _, v := range sv.Variants {
		if _, ok := v.FilterResult(m.Name, m.ThresholdKey); ok {
			continue
		}
		failed, err := m.Fn(v, sv)
		if err != nil {
			return nil, false, fmt.Errorf("filter %s: %w", m.Name, err)
		}
		v.SetFilterResult(m.Name, m.ThresholdKey, failed)
	}
	return sv, true, nil
}
