package variant

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/OpenSourceCancer/franklin/encoding/fasta"
	"github.com/OpenSourceCancer/franklin/restriction"
)

// SortedAllele is a single allele together with its evidence, as returned by
// SortedAlleles.
type SortedAllele struct {
	Allele string
	Kind   Kind
	*AlleleEvidence
}

// SortedAlleles returns v's alleles sorted by descending read count, with
// ties broken by first appearance (the order Variant.allele first created
// each AlleleEvidence, stamped in AlleleEvidence.seq since map iteration
// order carries no such guarantee). The result is cached on v.
func SortedAlleles(v *Variant) []SortedAllele {
	if v.sortedCache != nil {
		return v.sortedCache
	}
	out := make([]SortedAllele, 0, len(v.Alleles))
	for k, e := range v.Alleles {
		out = append(out, SortedAllele{Allele: k.Allele, Kind: k.Kind, AlleleEvidence: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Len() != out[j].Len() {
			return out[i].Len() > out[j].Len()
		}
		return out[i].seq < out[j].seq
	})
	v.sortedCache = out
	return out
}

// MAF returns the major-allele frequency: the largest allele's read count
// divided by the total read count across all alleles. Returns an error if
// the variant has zero total observations.
func MAF(v *Variant) (float64, error) {
	total := 0
	best := 0
	for _, e := range v.Alleles {
		n := e.Len()
		total += n
		if n > best {
			best = n
		}
	}
	if total == 0 {
		return 0, errors.Errorf("variant: maf undefined for variant with zero observations at %s:%d", v.RefName, v.Pos)
	}
	return float64(best) / float64(total), nil
}

// PIC computes the Botstein/Shete polymorphic-information-content statistic
// over v's allele-frequency distribution, grounded on
// biolib/snv/snv.py's _pic_for_alleles_in_lib. It supplements §4.D with a
// feature the distilled spec omitted (see SPEC_FULL.md).
func PIC(v *Variant) (float64, error) {
	total := 0
	for _, e := range v.Alleles {
		total += e.Len()
	}
	if total == 0 {
		return 0, errors.Errorf("variant: pic undefined for variant with zero observations at %s:%d", v.RefName, v.Pos)
	}
	sumSq := 0.0
	freqs := make([]float64, 0, len(v.Alleles))
	for _, e := range v.Alleles {
		p := float64(e.Len()) / float64(total)
		freqs = append(freqs, p)
		sumSq += p * p
	}
	sumSqSq := 0.0
	for i := range freqs {
		for j := i + 1; j < len(freqs); j++ {
			sumSqSq += freqs[i] * freqs[i] * freqs[j] * freqs[j]
		}
	}
	return 1 - sumSq - 2*sumSqSq, nil
}

// SnvsInWindow counts the variants in others whose position lies in the
// half-open interval [v.Pos - window/2, v.Pos + window/2), used by
// proximity-based filters (close_to_snv, high_variable_region).
func SnvsInWindow(v *Variant, others []*Variant, window int64) int {
	lo := v.Pos - window/2
	hi := v.Pos + window/2
	n := 0
	for _, o := range others {
		if o.Pos >= lo && o.Pos < hi {
			n++
		}
	}
	return n
}

// CapEnzymes computes the set of restriction enzymes whose cut-sites differ
// between any pair of the variant's alleles, caching the result on v. A
// previously-cached nil map (not computed, e.g. due to a prior tool
// failure) is distinguished from an empty-but-computed set: callers that
// want to force recomputation should clear v.CapEnzymes first.
func CapEnzymes(v *Variant, mapper *restriction.Mapper, referenceWindow string, windowStart int64, allEnzymes bool) (map[string]bool, error) {
	if v.CapEnzymes != nil {
		return v.CapEnzymes, nil
	}
	alleles := SortedAlleles(v)
	if len(alleles) < 2 {
		v.CapEnzymes = map[string]bool{}
		return v.CapEnzymes, nil
	}
	result := make(map[string]bool)
	for i := 0; i < len(alleles); i++ {
		for j := i + 1; j < len(alleles); j++ {
			seqA, err := reconstruct(referenceWindow, v.Pos-windowStart, alleles[i])
			if err != nil {
				return nil, err
			}
			seqB, err := reconstruct(referenceWindow, v.Pos-windowStart, alleles[j])
			if err != nil {
				return nil, err
			}
			cutsA, err := mapper.Cut(seqA, allEnzymes)
			if err != nil {
				return nil, err
			}
			cutsB, err := mapper.Cut(seqB, allEnzymes)
			if err != nil {
				return nil, err
			}
			for e := range symmetricDifference(cutsA, cutsB) {
				result[e] = true
			}
		}
	}
	v.CapEnzymes = result
	return result, nil
}

// ReferenceWindow extracts the substring of fa's sequence refName that
// CapEnzymes needs in order to reconstruct hypothetical allele sequences: the
// half-open interval [pos-before, pos+after), clamped to [0, len(refName)).
// It returns the window together with the 0-based position of its first
// base, which callers pass straight through as CapEnzymes' windowStart.
func ReferenceWindow(fa fasta.Fasta, refName string, pos, before, after int64) (string, int64, error) {
	refLen, err := fa.Len(refName)
	if err != nil {
		return "", 0, err
	}
	start := pos - before
	if start < 0 {
		start = 0
	}
	end := pos + after
	if end > int64(refLen) {
		end = int64(refLen)
	}
	if end <= start {
		return "", 0, errors.Errorf("variant: empty reference window for %s:%d", refName, pos)
	}
	window, err := fa.Get(refName, uint64(start), uint64(end))
	if err != nil {
		return "", 0, err
	}
	return window, start, nil
}

// reconstruct builds the hypothetical reference string for a single allele:
// unchanged for INVARIANT, substituted for SNP, spliced-out for DELETION,
// spliced-in for INSERTION, all relative to offset (the variant's position
// within referenceWindow).
func reconstruct(referenceWindow string, offset int64, a SortedAllele) (string, error) {
	if offset < 0 || int(offset) > len(referenceWindow) {
		return "", errors.Errorf("variant: offset %d out of bounds for reference window of length %d", offset, len(referenceWindow))
	}
	o := int(offset)
	switch a.Kind {
	case INVARIANT:
		return referenceWindow, nil
	case SNP:
		if o >= len(referenceWindow) {
			return "", errors.Errorf("variant: snp offset %d out of bounds", o)
		}
		return referenceWindow[:o] + a.Allele + referenceWindow[o+1:], nil
	case DELETION:
		end := o + len(a.Allele)
		if end > len(referenceWindow) {
			return "", errors.Errorf("variant: deletion extends past reference window")
		}
		return referenceWindow[:o] + referenceWindow[end:], nil
	case INSERTION:
		return referenceWindow[:o+1] + a.Allele + referenceWindow[o+1:], nil
	default:
		return "", errors.Errorf("variant: cannot reconstruct reference for aggregate kind %v", a.Kind)
	}
}

func symmetricDifference(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for e := range a {
		if !b[e] {
			out[e] = true
		}
	}
	for e := range b {
		if !a[e] {
			out[e] = true
		}
	}
	return out
}
