package align

import "github.com/pkg/errors"

// Format identifies which parser produced a stream of Results, so a
// pipeline can be validated against the score keys that parser actually
// populates (§6, Open Question #3).
type Format int

const (
	// FormatTabular is the 12-column tabular BLAST format; it only ever
	// populates the "expect" and "identity" score keys.
	FormatTabular Format = iota
	// FormatXML is the NCBI-BLAST-style XML tree; like FormatTabular it
	// populates "expect" and "identity".
	FormatXML
	// FormatExonerateCigar is the exonerate cigar line stream; it
	// populates "score" and "similarity".
	FormatExonerateCigar
)

// scoreKeys lists the score keys a Format's parser populates on every
// Match and MatchPart it produces.
func (f Format) scoreKeys() map[string]bool {
	switch f {
	case FormatTabular, FormatXML:
		return map[string]bool{"expect": true, "identity": true}
	case FormatExonerateCigar:
		return map[string]bool{"score": true, "similarity": true}
	default:
		return nil
	}
}

// NewFilterPipeline builds a FilterAlignments Pipeline validated against
// the score keys that Format's parser actually populates: requesting
// "similarity" from a tabular- or XML-sourced stream (or "identity"/
// "expect" from an exonerate-sourced one) is rejected here, at
// construction time, rather than surfacing later as ErrScoreKeyMissing
// deep in a ScoreStage.Apply call.
func NewFilterPipeline(format Format, stages ...Stage) (Pipeline, error) {
	keys := format.scoreKeys()
	for _, s := range stages {
		ss, ok := s.(*ScoreStage)
		if !ok {
			continue
		}
		if !keys[ss.Key] {
			return nil, errors.Errorf("align: score key %q is not populated by this source format", ss.Key)
		}
	}
	return FilterAlignments(stages...), nil
}
