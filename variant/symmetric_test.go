package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymmetricDifference(t *testing.T) {
	a := map[string]bool{"HinfI": true, "TscAI": true}
	b := map[string]bool{"TscAI": true, "EcoRI": true}
	got := symmetricDifference(a, b)
	assert.Equal(t, map[string]bool{"HinfI": true, "EcoRI": true}, got)
}
