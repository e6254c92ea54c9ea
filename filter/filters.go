package filter

import (
	"fmt"

	"github.com/OpenSourceCancer/franklin/restriction"
	"github.com/OpenSourceCancer/franklin/seq"
	"github.com/OpenSourceCancer/franklin/variant"
)

// BlastSearcher is the external collaborator behind UniqContiguous: a
// genomic-DB blast search restricted to a window around a variant. It is an
// external collaborator (§1 non-goals) and is not reimplemented here.
type BlastSearcher interface {
	// Search returns the number of hits for the window [start, end) on
	// sequence name, and whether any hit shows evidence of an intron
	// (multiple alignment segments not joinable by an est-to-genome
	// re-alignment).
	Search(seqName string, start, end int64) (hits int, hasIntronEvidence bool, err error)
}

// UniqContiguous builds the uniq_contiguous mapper (§4.E): fails when a
// blast of the ±distance window around the variant against a genomic DB
// gives >1 hit, or a single hit with intron evidence.
func UniqContiguous(distance int64, blast BlastSearcher) *Mapper {
	tk := fmt.Sprintf("%d", distance)
	return &Mapper{
		Name: "uniq_contiguous", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			hits, intron, err := blast.Search(v.RefName, v.Pos-distance, v.Pos+distance)
			if err != nil {
				return false, err
			}
			return hits > 1 || (hits == 1 && intron), nil
		},
	}
}

// CloseToIntron builds the close_to_intron mapper: fails when an intron
// feature lies within distance of the variant.
func CloseToIntron(distance int) *Mapper {
	tk := fmt.Sprintf("%d", distance)
	return &Mapper{
		Name: "close_to_intron", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			pos := int(v.Pos)
			for _, f := range sv.Sequence.FeaturesOfKind(seq.FeatureIntron) {
				if pos >= f.Start-distance && pos < f.End+distance {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

// HighVariableRegion builds the high_variable_region mapper: fails when
// local SNV density * 100 exceeds maxPercent. window == nil means "the
// whole sequence length".
func HighVariableRegion(maxPercent float64, window *int64) *Mapper {
	tk := "full"
	if window != nil {
		tk = fmt.Sprintf("%g/%d", maxPercent, *window)
	} else {
		tk = fmt.Sprintf("%g/full", maxPercent)
	}
	return &Mapper{
		Name: "high_variable_region", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			var density float64
			if window == nil {
				density = sv.Sequence.Variability()
			} else {
				n := variant.SnvsInWindow(v, sv.Variants, *window)
				if *window == 0 {
					return false, fmt.Errorf("high_variable_region: window must be > 0")
				}
				density = float64(n) / float64(*window)
			}
			return density*100 > maxPercent, nil
		},
	}
}

// CloseToSNV builds the close_to_snv mapper: fails when at least one other
// SNV lies within distance on either side of the variant.
func CloseToSNV(distance int64) *Mapper {
	tk := fmt.Sprintf("%d", distance)
	return &Mapper{
		Name: "close_to_snv", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			for _, other := range sv.Variants {
				if other == v {
					continue
				}
				d := other.Pos - v.Pos
				if d < 0 {
					d = -d
				}
				if d <= distance {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

// CloseToLimit builds the close_to_limit mapper: fails when the variant's
// position is within distance of either end of the sequence.
func CloseToLimit(distance int64) *Mapper {
	tk := fmt.Sprintf("%d", distance)
	return &Mapper{
		Name: "close_to_limit", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			length := int64(sv.Sequence.Len())
			return v.Pos < distance || v.Pos >= length-distance, nil
		},
	}
}

// MAF builds the maf mapper: fails when the variant's major-allele
// frequency exceeds frequency.
func MAF(frequency float64) *Mapper {
	tk := fmt.Sprintf("%g", frequency)
	return &Mapper{
		Name: "maf", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			m, err := variant.MAF(v)
			if err != nil {
				return false, err
			}
			return m > frequency, nil
		},
	}
}

// ByKind builds the by_kind mapper: fails when the variant's aggregate kind
// equals kind.
func ByKind(kind variant.Kind) *Mapper {
	return &Mapper{
		Name: "by_kind", ThresholdKey: kind.String(),
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			return v.AggregateKind() == kind, nil
		},
	}
}

// CapEnzymesFilter builds the cap_enzymes mapper: fails when the variant
// has at least one CAP enzyme. referenceWindow/windowStart locate the
// reference bases around the variant that CapEnzymes needs to reconstruct
// hypothetical alleles.
func CapEnzymesFilter(mapper *restriction.Mapper, allEnzymes bool, referenceWindow func(v *variant.Variant) (string, int64, error)) *Mapper {
	tk := fmt.Sprintf("all=%v", allEnzymes)
	return &Mapper{
		Name: "cap_enzymes", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			window, start, err := referenceWindow(v)
			if err != nil {
				return false, err
			}
			enzymes, err := variant.CapEnzymes(v, mapper, window, start, allEnzymes)
			if err != nil {
				return false, err
			}
			return len(enzymes) > 0, nil
		},
	}
}

// IsVariable builds the is_variable mapper: fails ("is variable") when the
// variant's allele set, restricted to alleles with at least one observation
// in a matching read-group, spans more than one kind. groups is the set of
// read-group names the grouping rule matches (construction of that set --
// e.g. "all groups in a given library" -- is left to the caller, since
// read-group taxonomy is outside this spec).
func IsVariable(groups map[string]bool) *Mapper {
	tk := fmt.Sprintf("groups=%d", len(groups))
	return &Mapper{
		Name: "is_variable", ThresholdKey: tk,
		Fn: func(v *variant.Variant, sv *SequenceVariants) (bool, error) {
			kinds := make(map[variant.Kind]bool)
			for key, ev := range v.Alleles {
				if ev.MatchesAnyGroup(groups) > 0 {
					kinds[key.Kind] = true
				}
			}
			return len(kinds) > 1, nil
		},
	}
}
