// Package fasta contains code for parsing (optionally indexed) FASTA files.
// See http://www.htslib.org/doc/faidx.html.  Briefly, FASTA files consist of a
// number of named sequences that may be interrupted by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appearing after a space is ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const bufferInitSize = 300 * 1024 * 1024

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences. It is the random-access reference index that the variant
// engine (§4.C) and the CAP-enzyme annotator (§4.D) use to recover reference
// bases.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory. Callers expecting to do random access against a large reference
// should prefer NewIndexed, which seeks into the file instead of buffering it
// whole.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seqName string
	var seq strings.Builder
	haveSeq := false
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if haveSeq {
				if seqName == "" {
					return nil, errors.Errorf("malformed FASTA file")
				}
				f.seqs[seqName] = seq.String()
				f.seqNames = append(f.seqNames, seqName)
				seq.Reset()
			}
			seqName = strings.Split(line[1:], " ")[0]
			haveSeq = true
		} else {
			if !haveSeq {
				return nil, errors.Errorf("malformed FASTA file")
			}
			seq.WriteString(line)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if haveSeq {
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
	}
	return f, nil
}

// NewFromPath opens path (resolved through grailbio/base/file, so it may be
// a local path or any scheme that package's registered implementations
// support) and builds a Fasta over its contents, as New does. A gzip magic
// number at the start of the file is detected and transparently decoded.
func NewFromPath(ctx context.Context, path string) (Fasta, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "fasta: opening %s", path)
	}
	defer f.Close(ctx) // nolint: errcheck

	br := bufio.NewReader(f.Reader(ctx))
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "fasta: sniffing %s", path)
	}
	var r io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrapf(err, "fasta: opening gzip stream %s", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	return New(r)
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", fmt.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seq string) (uint64, error) {
	s, ok := f.seqs[seq]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seq)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
