// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pileup

import (
	"container/heap"
	"io"

	"github.com/biogo/hts/sam"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// Observation is a single read's contribution to a PileupColumn.
type Observation struct {
	ReadName string
	ReadGroup string
	MapQ     byte
	Strand   StrandType

	// InDeletion is true when this read is currently spanning a deletion at
	// this column; Base/Qual/HasQual are meaningless in that case.
	InDeletion bool
	Base       byte
	Qual       byte
	HasQual    bool

	// IndelLength is 0 for a plain match/mismatch column; positive n means an
	// n-base insertion occurs in the read immediately after this column;
	// negative n means an n-base deletion starts at the next reference
	// position. InsertSeq carries the inserted bases when IndelLength > 0.
	IndelLength int
	InsertSeq   string
}

// PileupColumn is the vertical slice of all aligned-read observations
// covering a single reference position.
type PileupColumn struct {
	RefName string
	Pos     PosType
	RefBase byte

	Observations []Observation
}

// RecordSource yields alignment records for a single reference, sorted by
// position. *github.com/biogo/hts/bam.Reader satisfies this interface
// directly. Read returns io.EOF once exhausted.
type RecordSource interface {
	Read() (*sam.Record, error)
}

// ReferenceBases answers reference-base queries for Reader; it is typically
// backed by an encoding/fasta.Fasta.
type ReferenceBases interface {
	Get(seqName string, start, end uint64) (string, error)
}

type columnEntry struct {
	refPos      PosType
	readPos     int
	inDeletion  bool
	indelLength int
	insertSeq   string
}

type activeRead struct {
	name    string
	group   string
	mapq    byte
	strand  StrandType
	seq     []byte
	qual    []byte
	entries []columnEntry
	idx     int
}

// columnHeap orders indices into Reader.active by the referenced entry's
// refPos, implementing a merge across all currently-overlapping reads.
type columnHeap struct {
	active *[]*activeRead
	idxs   []int
}

func (h columnHeap) Len() int { return len(h.idxs) }
func (h columnHeap) Less(i, j int) bool {
	ai := (*h.active)[h.idxs[i]]
	aj := (*h.active)[h.idxs[j]]
	return ai.entries[ai.idx].refPos < aj.entries[aj.idx].refPos
}
func (h columnHeap) Swap(i, j int) { h.idxs[i], h.idxs[j] = h.idxs[j], h.idxs[i] }
func (h *columnHeap) Push(x interface{}) { h.idxs = append(h.idxs, x.(int)) }
func (h *columnHeap) Pop() interface{} {
	n := len(h.idxs)
	v := h.idxs[n-1]
	h.idxs = h.idxs[:n-1]
	return v
}

// Reader streams PileupColumns out of a RecordSource, one reference at a
// time. It is single-pass and non-restartable, matching the pileup reader's
// contract: columns are yielded in strictly increasing reference position.
type Reader struct {
	refName string
	src     RecordSource
	ref     ReferenceBases

	active  []*activeRead
	h       *columnHeap
	pending *sam.Record
	done    bool
}

// NewReader constructs a Reader over a single reference named refName. ref
// may be nil, in which case PileupColumn.RefBase is left zero.
func NewReader(refName string, src RecordSource, ref ReferenceBases) (*Reader, error) {
	r := &Reader{refName: refName, src: src, ref: ref}
	r.h = &columnHeap{active: &r.active}
	heap.Init(r.h)
	if err := r.advancePending(); err != nil && err != io.EOF {
		return nil, err
	}
	return r, nil
}

func (r *Reader) advancePending() error {
	rec, err := r.src.Read()
	if err != nil {
		r.pending = nil
		return err
	}
	r.pending = rec
	return nil
}

// activate builds the per-column entry list for a single alignment record
// (Next then pushes it onto the merge heap), grounded on the CIGAR walk in
// the teacher's alignRelevantBases.
func activate(rec *sam.Record) (*activeRead, error) {
	ar := &activeRead{
		name:   rec.Name,
		mapq:   byte(rec.MapQ),
		strand: GetStrand(rec),
		seq:    rec.Seq.Expand(),
		qual:   rec.Qual,
	}
	if rg := rec.AuxFields.Get(sam.NewTag("RG")); rg != nil {
		ar.group = rg.Value().(string)
	}
	posInRef := PosType(rec.Pos)
	posInRead := 0
	for _, co := range rec.Cigar {
		cLen := PosType(co.Len())
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for k := PosType(0); k < cLen; k++ {
				ar.entries = append(ar.entries, columnEntry{
					refPos:  posInRef + k,
					readPos: posInRead + int(k),
				})
			}
			posInRef += cLen
			posInRead += int(cLen)
		case sam.CigarInsertion:
			if n := len(ar.entries); n > 0 {
				ar.entries[n-1].indelLength = int(cLen)
				ar.entries[n-1].insertSeq = gunsafe.BytesToString(ar.seq[posInRead : posInRead+int(cLen)])
			}
			posInRead += int(cLen)
		case sam.CigarDeletion, sam.CigarSkipped:
			if n := len(ar.entries); n > 0 {
				ar.entries[n-1].indelLength = -int(cLen)
			}
			for k := PosType(0); k < cLen; k++ {
				ar.entries = append(ar.entries, columnEntry{refPos: posInRef + k, inDeletion: true})
			}
			posInRef += cLen
		case sam.CigarSoftClipped:
			posInRead += int(cLen)
		case sam.CigarHardClipped:
			// nothing consumed from seq/qual.
		default:
			return nil, errors.Errorf("pileup: unexpected CIGAR op %v in read %s", co, rec.Name)
		}
	}
	if len(ar.entries) == 0 {
		return nil, nil
	}
	return ar, nil
}

// Next returns the next PileupColumn in strictly increasing position order,
// or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*PileupColumn, error) {
	if r.done {
		return nil, io.EOF
	}
	for {
		for r.pending != nil && (r.h.Len() == 0 || PosType(r.pending.Pos) <= (*r.h.active)[r.h.idxs[0]].entries[(*r.h.active)[r.h.idxs[0]].idx].refPos) {
			rec := r.pending
			if err := r.advancePending(); err != nil && err != io.EOF {
				return nil, err
			} else if err == io.EOF {
				r.pending = nil
			}
			ar, err := activate(rec)
			if err != nil {
				return nil, err
			}
			if ar == nil {
				continue
			}
			r.active = append(r.active, ar)
			heap.Push(r.h, len(r.active)-1)
		}
		if r.h.Len() == 0 {
			r.done = true
			return nil, io.EOF
		}
		pos := (*r.h.active)[r.h.idxs[0]].entries[(*r.h.active)[r.h.idxs[0]].idx].refPos
		col := &PileupColumn{RefName: r.refName, Pos: pos}
		for r.h.Len() > 0 && (*r.h.active)[r.h.idxs[0]].entries[(*r.h.active)[r.h.idxs[0]].idx].refPos == pos {
			i := heap.Pop(r.h).(int)
			ar := r.active[i]
			e := ar.entries[ar.idx]
			obs := Observation{
				ReadName:    ar.name,
				ReadGroup:   ar.group,
				MapQ:        ar.mapq,
				Strand:      ar.strand,
				InDeletion:  e.inDeletion,
				IndelLength: e.indelLength,
				InsertSeq:   e.insertSeq,
			}
			if !e.inDeletion {
				obs.Base = ar.seq[e.readPos]
				if ar.qual != nil && len(ar.qual) > e.readPos && ar.qual[e.readPos] != 0xff {
					obs.Qual = ar.qual[e.readPos]
					obs.HasQual = true
				}
			}
			col.Observations = append(col.Observations, obs)
			ar.idx++
			if ar.idx < len(ar.entries) {
				heap.Push(r.h, i)
			}
		}
		if r.ref != nil {
			s, err := r.ref.Get(r.refName, uint64(pos), uint64(pos+1))
			if err != nil {
				return nil, errors.Wrapf(err, "pileup: reference base lookup at %s:%d", r.refName, pos)
			}
			col.RefBase = s[0]
		}
		return col, nil
	}
}
