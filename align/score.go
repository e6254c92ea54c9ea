package align

import "github.com/pkg/errors"

// ErrScoreKeyMissing is returned when a requested score key is absent from
// both a Match's own score map and its first MatchPart's, resolving the
// Open Question noted in SPEC_FULL.md: the source's two near-identical
// _get_match_score helpers are read as intending a hard failure, not a
// silent default.
var ErrScoreKeyMissing = errors.New("align: score key missing from match and first match-part")

// getMatchScore returns m's score under key, falling back to its first
// match-part's score map when the key is absent from m.Scores.
func getMatchScore(m *Match, key string) (float64, error) {
	if s, ok := m.Scores[key]; ok {
		return s, nil
	}
	if len(m.MatchParts) > 0 {
		if s, ok := m.MatchParts[0].Scores[key]; ok {
			return s, nil
		}
	}
	return 0, ErrScoreKeyMissing
}

func getMatchPartScore(mp *MatchPart, key string) (float64, bool) {
	s, ok := mp.Scores[key]
	return s, ok
}
