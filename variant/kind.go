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

// Package variant implements the SNV discovery engine (§4.C) and the
// annotation calculators (§4.D): consuming a pileup.PileupColumn stream and
// a reference, it reconstructs per-position allele multisets and computes
// derived properties over them.
package variant

import "github.com/pkg/errors"

// Kind classifies a single observed allele, or (INDEL/COMPLEX) the
// aggregate classification of a Variant with more than one allele kind.
type Kind int

const (
	// SNP is a single-base substitution relative to the reference.
	SNP Kind = iota
	// INSERTION is an allele that inserts bases relative to the reference.
	INSERTION
	// DELETION is an allele that removes bases relative to the reference.
	DELETION
	// INVARIANT is the reference allele itself.
	INVARIANT
	// INDEL is the aggregate kind of a Variant whose alleles mix insertions
	// and deletions (with no SNP/COMPLEX present). Never stored on a single
	// allele.
	INDEL
	// COMPLEX is the aggregate kind of a Variant whose alleles mix a SNP (or
	// another COMPLEX fold) with any non-invariant kind. Never stored on a
	// single allele.
	COMPLEX
)

func (k Kind) String() string {
	switch k {
	case SNP:
		return "SNP"
	case INSERTION:
		return "INSERTION"
	case DELETION:
		return "DELETION"
	case INVARIANT:
		return "INVARIANT"
	case INDEL:
		return "INDEL"
	case COMPLEX:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// foldKind implements the §4.C pairwise fold: (x, INVARIANT) -> x; any
// SNP/COMPLEX mixed with a non-invariant kind -> COMPLEX; INSERTION and
// DELETION folding together -> INDEL; same kind folded with itself -> that
// kind.
func foldKind(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a == INVARIANT {
		return b
	}
	if b == INVARIANT {
		return a
	}
	if a == SNP || a == COMPLEX || b == SNP || b == COMPLEX {
		return COMPLEX
	}
	return INDEL
}

// AggregateKind folds a non-empty set of allele kinds per §4.C: if every
// kind is INVARIANT, the result is INVARIANT; otherwise the kinds are
// pairwise-folded via foldKind, in the order given.
func AggregateKind(kinds []Kind) Kind {
	allInvariant := true
	for _, k := range kinds {
		if k != INVARIANT {
			allInvariant = false
			break
		}
	}
	if allInvariant {
		return INVARIANT
	}
	result := kinds[0]
	for _, k := range kinds[1:] {
		result = foldKind(result, k)
	}
	return result
}

// parseKind recovers a Kind from its String() form, for deserializing a
// record written by WriteVariants.
func parseKind(s string) (Kind, error) {
	switch s {
	case "SNP":
		return SNP, nil
	case "INSERTION":
		return INSERTION, nil
	case "DELETION":
		return DELETION, nil
	case "INVARIANT":
		return INVARIANT, nil
	case "INDEL":
		return INDEL, nil
	case "COMPLEX":
		return COMPLEX, nil
	default:
		return 0, errors.Errorf("variant: unknown kind %q", s)
	}
}
