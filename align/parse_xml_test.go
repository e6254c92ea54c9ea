package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlastXML = `<?xml version="1.0"?>
<BlastOutput>
  <BlastOutput_iterations>
    <Iteration>
      <Iteration_query-def>read1</Iteration_query-def>
      <Iteration_hits>
        <Hit>
          <Hit_def>chr1</Hit_def>
          <Hit_hsps>
            <Hsp>
              <Hsp_bit-score>80.0</Hsp_bit-score>
              <Hsp_score>160</Hsp_score>
              <Hsp_evalue>1e-20</Hsp_evalue>
              <Hsp_identity>19</Hsp_identity>
              <Hsp_align-len>20</Hsp_align-len>
              <Hsp_query-from>1</Hsp_query-from>
              <Hsp_query-to>20</Hsp_query-to>
              <Hsp_hit-from>101</Hsp_hit-from>
              <Hsp_hit-to>120</Hsp_hit-to>
              <Hsp_query-frame>1</Hsp_query-frame>
              <Hsp_hit-frame>1</Hsp_hit-frame>
            </Hsp>
            <Hsp>
              <Hsp_bit-score>50.0</Hsp_bit-score>
              <Hsp_score>100</Hsp_score>
              <Hsp_evalue>1e-5</Hsp_evalue>
              <Hsp_identity>8</Hsp_identity>
              <Hsp_align-len>10</Hsp_align-len>
              <Hsp_query-from>25</Hsp_query-from>
              <Hsp_query-to>34</Hsp_query-to>
              <Hsp_hit-from>220</Hsp_hit-from>
              <Hsp_hit-to>211</Hsp_hit-to>
              <Hsp_query-frame>1</Hsp_query-frame>
              <Hsp_hit-frame>-1</Hsp_hit-frame>
            </Hsp>
          </Hit_hsps>
        </Hit>
      </Iteration_hits>
    </Iteration>
  </BlastOutput_iterations>
</BlastOutput>`

func TestParseXMLBasic(t *testing.T) {
	results, err := ParseXML(strings.NewReader(sampleBlastXML))
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "read1", r.Query.Name)
	require.Len(t, r.Matches, 1)
	m := r.Matches[0]
	assert.Equal(t, "chr1", m.Subject)
	require.Len(t, m.MatchParts, 2)

	mp0 := m.MatchParts[0]
	assert.EqualValues(t, 0, mp0.QueryStart)
	assert.EqualValues(t, 20, mp0.QueryEnd)
	assert.EqualValues(t, 100, mp0.SubjectStart)
	assert.EqualValues(t, 120, mp0.SubjectEnd)
	assert.EqualValues(t, 1, mp0.SubjectStrand)
	assert.Equal(t, 1e-20, mp0.Scores["expect"])
	assert.InDelta(t, 0.95, mp0.Scores["identity"], 1e-9)

	mp1 := m.MatchParts[1]
	assert.EqualValues(t, -1, mp1.SubjectStrand)
	assert.EqualValues(t, 210, mp1.SubjectStart)
	assert.EqualValues(t, 220, mp1.SubjectEnd)

	// Match-level score takes the best (lowest) evalue among its HSPs.
	assert.Equal(t, 1e-20, m.Scores["expect"])
}

func TestParseXMLRejectsZeroAlignLen(t *testing.T) {
	bad := strings.Replace(sampleBlastXML, "<Hsp_align-len>20</Hsp_align-len>", "<Hsp_align-len>0</Hsp_align-len>", 1)
	_, err := ParseXML(strings.NewReader(bad))
	assert.Error(t, err)
}
