package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSourceCancer/franklin/encoding/fasta"
)

func TestReferenceWindowExtractsAndClamps(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(">chr1\nACGTACGTACGTACGTACGT\n"))
	require.NoError(t, err)

	window, start, err := ReferenceWindow(fa, "chr1", 10, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), start)
	assert.Equal(t, "TACGTAC", window)

	// Clamped at the left edge of the sequence.
	window, start, err = ReferenceWindow(fa, "chr1", 1, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, "ACG", window)

	// Clamped at the right edge of the sequence (length 20).
	window, start, err = ReferenceWindow(fa, "chr1", 18, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(16), start)
	assert.Equal(t, "ACGT", window)
}

func TestReferenceWindowFeedsReconstruct(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(">chr1\nACGTACGTACGT\n"))
	require.NoError(t, err)

	window, start, err := ReferenceWindow(fa, "chr1", 4, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", window)

	snp := SortedAllele{Allele: "N", Kind: SNP}
	got, err := reconstruct(window, 4-start, snp)
	require.NoError(t, err)
	assert.Equal(t, "ACGTNCGT", got)
}

func TestReferenceWindowUnknownSequence(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(">chr1\nACGT\n"))
	require.NoError(t, err)
	_, _, err = ReferenceWindow(fa, "chr2", 0, 1, 1)
	assert.Error(t, err)
}
