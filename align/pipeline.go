package align

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Stage is a single step of the alignment-result pipeline. ok=false drops
// the Result entirely (used by the empty-prune stage).
type Stage interface {
	Apply(r *Result) (out *Result, ok bool, err error)
}

// Pipeline is an ordered list of Stages.
type Pipeline []Stage

// Run applies every stage to r in order, stopping (and returning ok=false)
// as soon as a stage drops the result.
func (p Pipeline) Run(r *Result) (*Result, bool, error) {
	ok := true
	var err error
	for _, s := range p {
		r, ok, err = s.Apply(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}
	return r, true, nil
}

// FilterAlignments assembles a Pipeline per §4.F: the first stage is always
// a deep-copy mapper, the last two are always fix-matches followed by the
// empty-result predicate.
func FilterAlignments(stages ...Stage) Pipeline {
	p := make(Pipeline, 0, len(stages)+3)
	p = append(p, DeepCopyStage{})
	p = append(p, stages...)
	p = append(p, FixMatchesStage{}, EmptyPruneStage{})
	return p
}

// DeepCopyStage clones the Result so later stages never mutate the
// parser's original value.
type DeepCopyStage struct{}

// Apply implements Stage.
func (DeepCopyStage) Apply(r *Result) (*Result, bool, error) { return r.Clone(), true, nil }

// FixMatchesStage recomputes every surviving match's
// Start/End/SubjectStart/SubjectEnd as the min/max over its match-parts,
// dropping matches left with no match-parts.
type FixMatchesStage struct{}

// Apply implements Stage.
func (FixMatchesStage) Apply(r *Result) (*Result, bool, error) {
	kept := r.Matches[:0]
	for _, m := range r.Matches {
		if len(m.MatchParts) == 0 {
			continue
		}
		qs, qe := m.MatchParts[0].QueryStart, m.MatchParts[0].QueryEnd
		ss, se := m.MatchParts[0].SubjectStart, m.MatchParts[0].SubjectEnd
		for _, mp := range m.MatchParts[1:] {
			if mp.QueryStart < qs {
				qs = mp.QueryStart
			}
			if mp.QueryEnd > qe {
				qe = mp.QueryEnd
			}
			if mp.SubjectStart < ss {
				ss = mp.SubjectStart
			}
			if mp.SubjectEnd > se {
				se = mp.SubjectEnd
			}
		}
		m.Start, m.End, m.SubjectStart, m.SubjectEnd = qs, qe, ss, se
		kept = append(kept, m)
	}
	r.Matches = kept
	return r, true, nil
}

// EmptyPruneStage drops the Result if it has no matches left.
type EmptyPruneStage struct{}

// Apply implements Stage.
func (EmptyPruneStage) Apply(r *Result) (*Result, bool, error) {
	return r, len(r.Matches) > 0, nil
}

// Bound is a score/length threshold; at least one of Min/Max is set.
type Bound struct {
	Min *float64
	Max *float64
}

// ScoreStage filters match-parts (and then matches) by a score key against
// Bound, optionally with log-tolerance relative to the Result's best score.
type ScoreStage struct {
	Key       string
	Bound     Bound
	Tolerance *float64 // nil = no tolerance
}

// NewScoreStage validates that at least one bound is given.
func NewScoreStage(key string, bound Bound, tolerance *float64) (*ScoreStage, error) {
	if bound.Min == nil && bound.Max == nil {
		return nil, errors.Errorf("align: score stage for %q requires a min and/or max bound", key)
	}
	return &ScoreStage{Key: key, Bound: bound, Tolerance: tolerance}, nil
}

// betterScore reports whether a is a better score than c under the bound's
// direction: lower is better when Max is the binding bound (e.g. e-value),
// higher is better when only Min is set (e.g. identity/similarity).
func (b Bound) betterScore(a, c float64) bool {
	if b.Max != nil {
		return a < c
	}
	return a > c
}

// Apply implements Stage.
func (s *ScoreStage) Apply(r *Result) (*Result, bool, error) {
	var best float64
	haveBest := false
	for i := range r.Matches {
		sc, err := getMatchScore(&r.Matches[i], s.Key)
		if err != nil {
			return nil, false, err
		}
		if !haveBest || s.Bound.betterScore(sc, best) {
			best = sc
			haveBest = true
		}
	}

	var newMatches []Match
	for _, m := range r.Matches {
		var newParts []MatchPart
		for _, mp := range m.MatchParts {
			sc, ok := getMatchPartScore(&mp, s.Key)
			if !ok {
				return nil, false, errors.Errorf("align: match-part missing score key %q", s.Key)
			}
			keep, err := scoreAboveThreshold(sc, s.Bound, s.Tolerance, best)
			if err != nil {
				return nil, false, err
			}
			if keep {
				newParts = append(newParts, mp)
			}
		}
		if len(newParts) == 0 {
			continue
		}
		m.MatchParts = newParts
		msc, err := getMatchScore(&m, s.Key)
		if err != nil {
			return nil, false, err
		}
		keep, err := scoreAboveThreshold(msc, s.Bound, s.Tolerance, best)
		if err != nil {
			return nil, false, err
		}
		if !keep {
			continue
		}
		newMatches = append(newMatches, m)
	}
	r.Matches = newMatches
	return r, true, nil
}

// scoreAboveThreshold implements the §4.F score policy, including the
// log-tolerance edge cases: a max-bounded score of exactly 0 is always
// accepted; below-min and above-max scores are always rejected regardless
// of tolerance. Otherwise a score is kept when its log10 distance from best
// is at most tolerance.
func scoreAboveThreshold(score float64, bound Bound, tolerance *float64, best float64) (bool, error) {
	if tolerance == nil {
		if bound.Min != nil && score < *bound.Min {
			return false, nil
		}
		if bound.Max != nil && score > *bound.Max {
			return false, nil
		}
		return true, nil
	}
	if bound.Max != nil && score == 0 {
		return true, nil
	}
	if bound.Min != nil && score < *bound.Min {
		return false, nil
	}
	if bound.Max != nil && score > *bound.Max {
		return false, nil
	}
	if score == 0 || best == 0 {
		return score == best, nil
	}
	diff := math.Abs(math.Log10(score) - math.Log10(best))
	return diff <= *tolerance, nil
}

// LengthBasis selects which coordinate system a LengthStage measures
// coverage over.
type LengthBasis int

const (
	// BasisQuery measures covered segments on the query.
	BasisQuery LengthBasis = iota
	// BasisSubject measures covered segments on the subject.
	BasisSubject
)

// LengthStage drops matches whose covered-segment length (§4.F) falls
// below a configured absolute residue count or percentage of the relevant
// sequence length. Exactly one of AbsoluteResidues/Percentage must be set.
type LengthStage struct {
	Basis            LengthBasis
	AbsoluteResidues *int64
	Percentage       *float64 // e.g. 0.5 == 50%
	QueryLength      int64
	SubjectLength    int64
}

// NewLengthStage validates the mutual-exclusivity configuration rule.
func NewLengthStage(basis LengthBasis, absolute *int64, percentage *float64, queryLen, subjectLen int64) (*LengthStage, error) {
	if (absolute == nil) == (percentage == nil) {
		return nil, errors.Errorf("align: length stage requires exactly one of absolute residues or percentage")
	}
	return &LengthStage{Basis: basis, AbsoluteResidues: absolute, Percentage: percentage, QueryLength: queryLen, SubjectLength: subjectLen}, nil
}

func (s *LengthStage) threshold() int64 {
	if s.AbsoluteResidues != nil {
		return *s.AbsoluteResidues
	}
	basisLen := s.QueryLength
	if s.Basis == BasisSubject {
		basisLen = s.SubjectLength
	}
	return int64(float64(basisLen) * *s.Percentage)
}

// Apply implements Stage.
func (s *LengthStage) Apply(r *Result) (*Result, bool, error) {
	threshold := s.threshold()
	var kept []Match
	for _, m := range r.Matches {
		ranges := make([][2]int64, 0, len(m.MatchParts))
		for _, mp := range m.MatchParts {
			if s.Basis == BasisQuery {
				ranges = append(ranges, [2]int64{mp.QueryStart, mp.QueryEnd - 1})
			} else {
				ranges = append(ranges, [2]int64{mp.SubjectStart, mp.SubjectEnd - 1})
			}
		}
		if matchLength(ranges) >= threshold {
			kept = append(kept, m)
		}
	}
	r.Matches = kept
	return r, true, nil
}

// matchLength sums (end-start+1) over the covered segments formed by
// merging ranges, including edge-to-edge adjacency (an END at x followed
// by a START at x+1 merges into one segment), per §4.F.
func matchLength(ranges [][2]int64) int64 {
	segs := coveredSegments(ranges)
	var total int64
	for _, s := range segs {
		total += s[1] - s[0] + 1
	}
	return total
}

// coveredSegments merges possibly-overlapping, possibly edge-adjacent
// inclusive ranges into maximal segments. This is equivalent to the
// tag-sort-and-scan construction in §4.F (START before END on ties, cancel
// adjacent END-x/START-(x+1) pairs, open/close on 0<->1 transitions) and is
// invariant under permutation of the input ranges.
func coveredSegments(ranges [][2]int64) [][2]int64 {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([][2]int64(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })
	var out [][2]int64
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if r[0] <= cur[1]+1 {
			if r[1] > cur[1] {
				cur[1] = r[1]
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	out = append(out, cur)
	return out
}
