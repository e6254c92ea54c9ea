package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCoveredSegmentsMerge grounds seed test 5 (§8).
func TestCoveredSegmentsMerge(t *testing.T) {
	segs := coveredSegments([][2]int64{{10, 20}, {21, 30}})
	assert.Equal(t, [][2]int64{{10, 30}}, segs)
	assert.EqualValues(t, 21, matchLength([][2]int64{{10, 20}, {21, 30}}))

	segs2 := coveredSegments([][2]int64{{0, 9}, {5, 14}, {20, 24}})
	assert.Equal(t, [][2]int64{{0, 14}, {20, 24}}, segs2)
	assert.EqualValues(t, 20, matchLength([][2]int64{{0, 9}, {5, 14}, {20, 24}}))
}

func TestCoveredSegmentsPermutationInvariant(t *testing.T) {
	a := matchLength([][2]int64{{0, 9}, {5, 14}, {20, 24}})
	b := matchLength([][2]int64{{20, 24}, {0, 9}, {5, 14}})
	assert.Equal(t, a, b)
}

func scorePtr(f float64) *float64 { return &f }

// TestScoreStageLogTolerance grounds seed test 6 (§8).
func TestScoreStageLogTolerance(t *testing.T) {
	mk := func(score float64) Match {
		return Match{
			Scores: map[string]float64{"expect": score},
			MatchParts: []MatchPart{{
				QueryStart: 0, QueryEnd: 10, SubjectStart: 0, SubjectEnd: 10,
				Scores: map[string]float64{"expect": score},
			}},
		}
	}
	r := &Result{Query: queryOnly("q"), Matches: []Match{mk(1e-50), mk(1e-49), mk(1e-5)}}

	stage, err := NewScoreStage("expect", Bound{Max: scorePtr(1.0)}, scorePtr(1.0))
	require.NoError(t, err)

	out, ok, err := stage.Apply(r)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out.Matches, 2)
	assert.InDelta(t, 1e-50, out.Matches[0].Scores["expect"], 1e-60)
	assert.InDelta(t, 1e-49, out.Matches[1].Scores["expect"], 1e-60)
}

// A literal score of 0 is always kept under a max-score bound, regardless
// of tolerance or what the result's best score happens to be.
func TestScoreStageZeroAlwaysKeptWithMaxBound(t *testing.T) {
	mk := func(score float64) Match {
		return Match{
			Scores:     map[string]float64{"expect": score},
			MatchParts: []MatchPart{{Scores: map[string]float64{"expect": score}}},
		}
	}
	r := &Result{Query: queryOnly("q"), Matches: []Match{mk(0), mk(1e-5)}}
	stage, err := NewScoreStage("expect", Bound{Max: scorePtr(1.0)}, scorePtr(1.0))
	require.NoError(t, err)
	out, ok, err := stage.Apply(r)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out.Matches, 1)
	assert.Equal(t, 0.0, out.Matches[0].Scores["expect"])
}

func TestFixMatchesRecomputesCoordinates(t *testing.T) {
	r := &Result{Matches: []Match{{
		MatchParts: []MatchPart{
			{QueryStart: 10, QueryEnd: 20, SubjectStart: 100, SubjectEnd: 110},
			{QueryStart: 5, QueryEnd: 12, SubjectStart: 90, SubjectEnd: 101},
		},
	}}}
	stage := FixMatchesStage{}
	out, ok, err := stage.Apply(r)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out.Matches, 1)
	m := out.Matches[0]
	assert.EqualValues(t, 5, m.Start)
	assert.EqualValues(t, 20, m.End)
	assert.EqualValues(t, 90, m.SubjectStart)
	assert.EqualValues(t, 110, m.SubjectEnd)
}

func TestEmptyPruneDropsResultWithNoMatches(t *testing.T) {
	r := &Result{Matches: nil}
	_, ok, err := EmptyPruneStage{}.Apply(r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLengthStageMutualExclusivity(t *testing.T) {
	_, err := NewLengthStage(BasisQuery, nil, nil, 100, 100)
	assert.Error(t, err)

	abs := int64(15)
	pct := 0.5
	_, err = NewLengthStage(BasisQuery, &abs, &pct, 100, 100)
	assert.Error(t, err)
}

func TestLengthStageDropsShortMatches(t *testing.T) {
	abs := int64(25)
	stage, err := NewLengthStage(BasisQuery, &abs, nil, 0, 0)
	require.NoError(t, err)
	r := &Result{Matches: []Match{
		{MatchParts: []MatchPart{{QueryStart: 0, QueryEnd: 10}}},            // length 10 < 25
		{MatchParts: []MatchPart{{QueryStart: 0, QueryEnd: 15}, {QueryStart: 15, QueryEnd: 30}}}, // length 30 >= 25
	}}
	out, ok, err := stage.Apply(r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, out.Matches, 1)
}

func TestFilterAlignmentsPipelineShape(t *testing.T) {
	r := &Result{Matches: []Match{{MatchParts: []MatchPart{{QueryStart: 0, QueryEnd: 5}}}}}
	p := FilterAlignments()
	out, ok, err := p.Run(r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotSame(t, r, out) // deep-copied by the mandatory first stage
	assert.Len(t, out.Matches, 1)
}

func TestFilterAlignmentsDropsEmptyResult(t *testing.T) {
	r := &Result{Matches: []Match{{MatchParts: nil}}}
	p := FilterAlignments()
	_, ok, err := p.Run(r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMatchScoreFallbackAndMissing(t *testing.T) {
	m := &Match{MatchParts: []MatchPart{{Scores: map[string]float64{"expect": 1e-10}}}}
	s, err := getMatchScore(m, "expect")
	require.NoError(t, err)
	assert.Equal(t, 1e-10, s)

	_, err = getMatchScore(m, "similarity")
	assert.ErrorIs(t, err, ErrScoreKeyMissing)
}
