package filter

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSourceCancer/franklin/seq"
	"github.com/OpenSourceCancer/franklin/variant"
)

func newSeq(t *testing.T, bases string) *seq.Sequence {
	t.Helper()
	s, err := seq.New("chr1", "", bases, nil)
	require.NoError(t, err)
	return s
}

func TestMAFFilter(t *testing.T) {
	v := variant.NewVariant("chr1", 10)
	inv := v.Alleles
	_ = inv
	evInv := &variant.AlleleEvidence{}
	evInv.Add("r1", "g1", true, nil, 60)
	v.Alleles[variant.AlleleKey{Allele: "A", Kind: variant.INVARIANT}] = evInv
	evDel := &variant.AlleleEvidence{}
	evDel.Add("r2", "g1", true, nil, 60)
	evDel.Add("r3", "g1", false, nil, 60)
	v.Alleles[variant.AlleleKey{Allele: "A", Kind: variant.DELETION}] = evDel

	stage := MAF(0.5)
	sv := &SequenceVariants{Sequence: newSeq(t, "ACGTACGT"), Variants: []*variant.Variant{v}}
	_, ok, err := stage.Apply(sv)
	require.NoError(t, err)
	assert.True(t, ok)
	failed, cached := v.FilterResult("maf", "0.5")
	require.True(t, cached)
	assert.True(t, failed) // 2/3 > 0.5

	// Idempotent: re-applying does not recompute (we can't easily observe
	// that directly, but the cached value must remain stable).
	_, _, err = stage.Apply(sv)
	require.NoError(t, err)
	failed2, _ := v.FilterResult("maf", "0.5")
	assert.Equal(t, failed, failed2)
}

func TestByKindFilter(t *testing.T) {
	v := variant.NewVariant("chr1", 1)
	v.Alleles[variant.AlleleKey{Allele: "A", Kind: variant.SNP}] = &variant.AlleleEvidence{ReadNames: []string{"r1"}, ReadGroups: []string{"g"}, Orientations: []bool{true}, Qualities: []*int{nil}, MappingQualities: []int{60}}

	stage := ByKind(variant.SNP)
	sv := &SequenceVariants{Sequence: newSeq(t, "ACGT"), Variants: []*variant.Variant{v}}
	_, _, err := stage.Apply(sv)
	require.NoError(t, err)
	failed, ok := v.FilterResult("by_kind", "SNP")
	require.True(t, ok)
	assert.True(t, failed)
}

func TestCloseToLimitFilter(t *testing.T) {
	near := variant.NewVariant("chr1", 1)
	far := variant.NewVariant("chr1", 50)
	sv := &SequenceVariants{Sequence: newSeq(t, string(make([]byte, 100))), Variants: []*variant.Variant{near, far}}

	stage := CloseToLimit(5)
	_, _, err := stage.Apply(sv)
	require.NoError(t, err)

	f1, _ := near.FilterResult("close_to_limit", "5")
	assert.True(t, f1)
	f2, _ := far.FilterResult("close_to_limit", "5")
	assert.False(t, f2)
}

func TestCloseToSNVFilter(t *testing.T) {
	v1 := variant.NewVariant("chr1", 10)
	v2 := variant.NewVariant("chr1", 13)
	v3 := variant.NewVariant("chr1", 500)
	sv := &SequenceVariants{Sequence: newSeq(t, "ACGT"), Variants: []*variant.Variant{v1, v2, v3}}

	stage := CloseToSNV(5)
	_, _, err := stage.Apply(sv)
	require.NoError(t, err)

	f1, _ := v1.FilterResult("close_to_snv", "5")
	assert.True(t, f1)
	f3, _ := v3.FilterResult("close_to_snv", "5")
	assert.False(t, f3)
}

func TestPipelineRunAndStageOrdering(t *testing.T) {
	v := variant.NewVariant("chr1", 1)
	v.Alleles[variant.AlleleKey{Allele: "A", Kind: variant.SNP}] = &variant.AlleleEvidence{ReadNames: []string{"r1"}, ReadGroups: []string{"g"}, Orientations: []bool{true}, Qualities: []*int{nil}, MappingQualities: []int{60}}
	sv := &SequenceVariants{Sequence: newSeq(t, "ACGT"), Variants: []*variant.Variant{v}}

	src := &sliceSource{items: []*SequenceVariants{sv}}
	p := New(ByKind(variant.SNP), CloseToLimit(100))
	out := p.Run(src)

	got, err := out.Next()
	require.NoError(t, err)
	assert.Same(t, sv, got)

	_, err = out.Next()
	assert.Equal(t, io.EOF, err)
}

type sliceSource struct {
	items []*SequenceVariants
	i     int
}

func (s *sliceSource) Next() (*SequenceVariants, error) {
	if s.i >= len(s.items) {
		return nil, io.EOF
	}
	v := s.items[s.i]
	s.i++
	return v, nil
}
