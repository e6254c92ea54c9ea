package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTabularGroupsByQueryAndNormalizesCoords(t *testing.T) {
	input := strings.Join([]string{
		"read1\tchr1\t98.5\t20\t0\t0\t1\t20\t101\t120\t1e-10\t40",
		"read1\tchr2\t90.0\t20\t1\t0\t1\t20\t220\t201\t1e-5\t35",
		"read2\tchr1\t100.0\t10\t0\t0\t5\t14\t50\t59\t1e-20\t50",
	}, "\n")

	results, err := ParseTabular(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, results, 2)

	r1 := results[0]
	assert.Equal(t, "read1", r1.Query.Name)
	require.Len(t, r1.Matches, 2)

	m0 := r1.Matches[0]
	require.Len(t, m0.MatchParts, 1)
	mp0 := m0.MatchParts[0]
	assert.EqualValues(t, 0, mp0.QueryStart)
	assert.EqualValues(t, 20, mp0.QueryEnd)
	assert.EqualValues(t, 100, mp0.SubjectStart)
	assert.EqualValues(t, 120, mp0.SubjectEnd)
	assert.EqualValues(t, 1, mp0.SubjectStrand)
	assert.Equal(t, 1e-10, mp0.Scores["expect"])
	assert.Equal(t, 98.5, mp0.Scores["identity"])
	_, hasScore := mp0.Scores["score"]
	assert.False(t, hasScore, "tabular parser must only populate expect/identity")

	mp1 := r1.Matches[1].MatchParts[0]
	assert.EqualValues(t, -1, mp1.SubjectStrand) // send < sstart => reverse strand

	assert.Equal(t, "read2", results[1].Query.Name)
}

func TestParseTabularRejectsMalformedLine(t *testing.T) {
	_, err := ParseTabular(strings.NewReader("too few columns here"))
	assert.Error(t, err)
}
