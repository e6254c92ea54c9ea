package variant

import (
	"github.com/OpenSourceCancer/franklin/pileup"
)

// ColumnSource is the subset of pileup.Reader that Discoverer pulls from.
type ColumnSource interface {
	Next() (*pileup.PileupColumn, error)
}

// delState tracks a single read's progress through an in-progress deletion:
// remaining positions left to consume, and whether the synthetic DELETION
// allele observation is still owed to the caller (reportPending).
type delState struct {
	remaining     int
	reportPending bool
	length        int
}

// Discoverer implements the §4.C SNV discovery engine: it consumes a
// pileup.PileupColumn stream and yields a Variant for every position whose
// reconstructed allele multiset has more than one distinct (allele, kind)
// key. It drives allele reconstruction (including multi-column indels) with
// a per-read state machine carried across Next calls.
type Discoverer struct {
	src        ColumnSource
	refName    string
	inProgress map[string]*delState
}

// NewDiscoverer constructs a Discoverer reading columns from src, all
// belonging to the reference named refName.
func NewDiscoverer(src ColumnSource, refName string) *Discoverer {
	return &Discoverer{src: src, refName: refName, inProgress: make(map[string]*delState)}
}

// Next advances to the next variant-bearing column and returns it, or
// propagates the source's error (io.EOF at end of stream).
func (d *Discoverer) Next() (*Variant, error) {
	for {
		col, err := d.src.Next()
		if err != nil {
			return nil, err
		}
		v := d.processColumn(col)
		if len(v.Alleles) > 1 {
			return v, nil
		}
	}
}

func (d *Discoverer) processColumn(col *pileup.PileupColumn) *Variant {
	v := NewVariant(d.refName, int64(col.Pos))
	forward := func(s pileup.StrandType) bool { return s == pileup.StrandFwd }
	qualPtr := func(ok bool, q byte) *int {
		if !ok {
			return nil
		}
		iq := int(q)
		return &iq
	}

	for _, obs := range col.Observations {
		r := obs.ReadName
		if st, ok := d.inProgress[r]; ok {
			if st.reportPending {
				ev := v.allele(AlleleKey{Allele: DeletionAllele(st.length), Kind: DELETION})
				ev.Add(r, obs.ReadGroup, forward(obs.Strand), nil, int(obs.MapQ))
				st.reportPending = false
			}
			st.remaining--
			if st.remaining <= 0 {
				delete(d.inProgress, r)
			}
		} else {
			allele := string(obs.Base)
			kind := SNP
			if col.RefBase != 0 && obs.Base == col.RefBase {
				kind = INVARIANT
			}
			ev := v.allele(AlleleKey{Allele: allele, Kind: kind})
			ev.Add(r, obs.ReadGroup, forward(obs.Strand), qualPtr(obs.HasQual, obs.Qual), int(obs.MapQ))
		}

		switch {
		case obs.IndelLength < 0:
			d.inProgress[r] = &delState{remaining: -obs.IndelLength, reportPending: true, length: -obs.IndelLength}
		case obs.IndelLength > 0:
			ev := v.allele(AlleleKey{Allele: obs.InsertSeq, Kind: INSERTION})
			ev.Add(r, obs.ReadGroup, forward(obs.Strand), qualPtr(obs.HasQual, obs.Qual), int(obs.MapQ))
		}
	}
	return v
}
