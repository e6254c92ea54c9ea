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

// Package seq holds the sequence/feature data model shared by the variant
// discovery engine and the SNV filter pipeline: a named base string with an
// optional per-base quality and an ordered list of attached features.
package seq

import (
	"github.com/pkg/errors"
)

// FeatureKind tags the kind of a Feature.
type FeatureKind int

const (
	// FeatureSNV is a single-nucleotide or small-indel variant feature.
	FeatureSNV FeatureKind = iota
	// FeatureORF is an open reading frame.
	FeatureORF
	// FeatureIntron is an intron.
	FeatureIntron
	// FeatureMicrosatellite is a short tandem repeat.
	FeatureMicrosatellite
)

// Feature is a half-open, 0-based annotation on a parent Sequence. Attrs
// carries kind-specific attributes; for FeatureSNV it holds the *Variant
// (see package variant) keyed under AttrVariant.
type Feature struct {
	Kind  FeatureKind
	Start int
	End   int
	Attrs map[string]interface{}
}

// AttrVariant is the Attrs key under which an SNV feature's *variant.Variant
// is stored. Declared here (rather than imported from package variant) to
// avoid an import cycle, since package variant depends on package seq.
const AttrVariant = "variant"

// Sequence is a named base string with optional per-base quality and
// attached features.
type Sequence struct {
	Name        string
	Description string
	Bases       string
	Quality     []int // nil if absent; else len(Quality) == len(Bases)
	Features    []Feature
}

// New constructs a Sequence, validating the quality/bases length invariant.
func New(name, description, bases string, quality []int) (*Sequence, error) {
	if quality != nil && len(quality) != len(bases) {
		return nil, errors.Errorf("seq: quality length %d does not match bases length %d", len(quality), len(bases))
	}
	return &Sequence{Name: name, Description: description, Bases: bases, Quality: quality}, nil
}

// Len returns the number of bases in the sequence.
func (s *Sequence) Len() int { return len(s.Bases) }

// AddFeature appends f to the sequence after validating its bounds.
func (s *Sequence) AddFeature(f Feature) error {
	if f.Start < 0 || f.Start > f.End || f.End > s.Len() {
		return errors.Errorf("seq: feature [%d,%d) out of bounds for sequence of length %d", f.Start, f.End, s.Len())
	}
	s.Features = append(s.Features, f)
	return nil
}

// FeaturesOfKind returns the subsequence of s.Features with the given kind,
// in original order.
func (s *Sequence) FeaturesOfKind(kind FeatureKind) []Feature {
	var out []Feature
	for _, f := range s.Features {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Slice returns a new Sequence over the half-open interval [start, end),
// preserving quality and intersecting (and re-based) features.
func (s *Sequence) Slice(start, end int) (*Sequence, error) {
	if start < 0 || start > end || end > s.Len() {
		return nil, errors.Errorf("seq: slice [%d,%d) out of bounds for sequence of length %d", start, end, s.Len())
	}
	out := &Sequence{
		Name:        s.Name,
		Description: s.Description,
		Bases:       s.Bases[start:end],
	}
	if s.Quality != nil {
		out.Quality = append([]int(nil), s.Quality[start:end]...)
	}
	for _, f := range s.Features {
		fs, fe := f.Start, f.End
		if fs < start {
			fs = start
		}
		if fe > end {
			fe = end
		}
		if fs >= fe {
			continue
		}
		out.Features = append(out.Features, Feature{
			Kind:  f.Kind,
			Start: fs - start,
			End:   fe - start,
			Attrs: f.Attrs,
		})
	}
	return out, nil
}

// Variability returns the density of SNV features: the count of FeatureSNV
// features divided by sequence length.
func (s *Sequence) Variability() float64 {
	if s.Len() == 0 {
		return 0
	}
	return float64(len(s.FeaturesOfKind(FeatureSNV))) / float64(s.Len())
}
