package restriction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonEnzymesCount(t *testing.T) {
	assert.Len(t, CommonEnzymes, 23)
}

func TestParseCutEnzymes(t *testing.T) {
	report := []byte(`Sequence name: query
Sequence length: 42

# Enzymes that cut
HinfI            10
TscAI            15

# Enzymes that do not cut
EcoRI
`)
	cuts, err := parseCutEnzymes(report)
	require.NoError(t, err)
	assert.True(t, cuts["HinfI"])
	assert.True(t, cuts["TscAI"])
	assert.False(t, cuts["EcoRI"])
}

func TestParseCutEnzymesMissingSection(t *testing.T) {
	_, err := parseCutEnzymes([]byte("garbage\n"))
	assert.Error(t, err)
}

func TestRemapBuildCommandRequiresInput(t *testing.T) {
	_, err := Remap{}.BuildCommand()
	assert.Error(t, err)
}

func TestCutCacheKeyDeterministicAndDistinguishesAllEnzymes(t *testing.T) {
	a := cutCacheKey("ACGTACGT", false)
	b := cutCacheKey("ACGTACGT", false)
	assert.Equal(t, a, b)

	c := cutCacheKey("ACGTACGT", true)
	assert.NotEqual(t, a, c)

	d := cutCacheKey("TTTTTTTT", false)
	assert.NotEqual(t, a, d)
}

func TestMapperCutServesFromCache(t *testing.T) {
	m := &Mapper{}
	m.cache = map[uint64]map[string]bool{
		cutCacheKey("ACGT", false): {"EcoRI": true},
	}
	got, err := m.Cut("ACGT", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"EcoRI": true}, got)
}
