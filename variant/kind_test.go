package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateKindAllInvariant(t *testing.T) {
	assert.Equal(t, INVARIANT, AggregateKind([]Kind{INVARIANT, INVARIANT}))
}

func TestAggregateKindIndel(t *testing.T) {
	assert.Equal(t, INDEL, AggregateKind([]Kind{INSERTION, DELETION, INVARIANT}))
}

func TestAggregateKindComplex(t *testing.T) {
	assert.Equal(t, COMPLEX, AggregateKind([]Kind{SNP, INSERTION, DELETION, INVARIANT}))
}

func TestAggregateKindSingleSNP(t *testing.T) {
	assert.Equal(t, SNP, AggregateKind([]Kind{SNP}))
}

func TestFoldKindCommutativeCases(t *testing.T) {
	assert.Equal(t, COMPLEX, foldKind(SNP, DELETION))
	assert.Equal(t, COMPLEX, foldKind(DELETION, SNP))
	assert.Equal(t, INDEL, foldKind(INSERTION, DELETION))
	assert.Equal(t, SNP, foldKind(SNP, INVARIANT))
	assert.Equal(t, DELETION, foldKind(INVARIANT, DELETION))
	assert.Equal(t, SNP, foldKind(SNP, SNP))
}
