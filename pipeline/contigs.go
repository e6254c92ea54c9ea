// Package pipeline provides the concurrency shell described in §5: a
// variant/filter pipeline is a single-threaded, single-consumer lazy
// iterator, but nothing prevents running one independent pipeline instance
// per reference contig in parallel. RunContigs is that worker pool.
package pipeline

import (
	"context"

	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
)

// Background returns the package-wide default context used by entrypoints
// that have no caller-supplied context, mirroring how the rest of the
// grailbio/base ecosystem roots its background work.
func Background() context.Context {
	return vcontext.Background()
}

// RunContigs runs fn once per contig, with a bound degree of concurrency.
// Each contig's pipeline instance (pileup reader, discoverer, annotator,
// filter stages) must be independent of the others: §5 requires that
// within a single pipeline the §4.B ordering guarantee holds, but places no
// ordering requirement across contigs. The first error from any contig is
// returned; RunContigs does not cancel the others early (matching
// traverse.Each's semantics).
func RunContigs(contigs []string, fn func(contig string) error) error {
	return traverse.Each(len(contigs), func(i int) error {
		return fn(contigs[i])
	})
}
