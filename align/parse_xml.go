package align

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// blastXMLOutput mirrors the subset of NCBI BLAST's XML schema (BlastOutput
// > BlastOutput_iterations > Iteration > Iteration_hits > Hit >
// Hit_hsps > Hsp) that §4.F needs: query identity, subject identity, and HSP
// coordinates/scores. Fields outside this subset are ignored.
type blastXMLOutput struct {
	Iterations []blastXMLIteration `xml:"BlastOutput_iterations>Iteration"`
}

type blastXMLIteration struct {
	QueryDef string        `xml:"Iteration_query-def"`
	Hits     []blastXMLHit `xml:"Iteration_hits>Hit"`
}

type blastXMLHit struct {
	Def  string        `xml:"Hit_def"`
	HSPs []blastXMLHSP `xml:"Hit_hsps>Hsp"`
}

type blastXMLHSP struct {
	BitScore   float64 `xml:"Hsp_bit-score"`
	Score      float64 `xml:"Hsp_score"`
	Evalue     float64 `xml:"Hsp_evalue"`
	Identity   int64   `xml:"Hsp_identity"`
	AlignLen   int64   `xml:"Hsp_align-len"`
	QueryFrom  int64   `xml:"Hsp_query-from"`
	QueryTo    int64   `xml:"Hsp_query-to"`
	HitFrom    int64   `xml:"Hsp_hit-from"`
	HitTo      int64   `xml:"Hsp_hit-to"`
	QueryFrame int64   `xml:"Hsp_query-frame"`
	HitFrame   int64   `xml:"Hsp_hit-frame"`
}

// ParseXML reads an NCBI-BLAST-style XML result tree and produces one
// *Result per Iteration (query), one Match per Hit, one MatchPart per Hsp.
// Coordinates are normalized from 1-based inclusive to 0-based half-open;
// strand is derived from the HSP frame (negative frame => -1). Populates
// the "expect" and "identity" score keys (identity as a fraction of
// align-len), matching the fields the tabular format also exposes.
func ParseXML(r io.Reader) ([]*Result, error) {
	var doc blastXMLOutput
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "align: decoding blast XML")
	}

	results := make([]*Result, 0, len(doc.Iterations))
	for _, it := range doc.Iterations {
		res := &Result{Query: queryOnly(it.QueryDef)}
		for _, hit := range it.Hits {
			var match Match
			match.Subject = hit.Def
			for _, hsp := range hit.HSPs {
				if hsp.AlignLen == 0 {
					return nil, errors.Errorf("align: hsp for query %q hit %q has zero align-len", it.QueryDef, hit.Def)
				}
				identity := float64(hsp.Identity) / float64(hsp.AlignLen)

				qStrand := int8(1)
				if hsp.QueryFrame < 0 {
					qStrand = -1
				}
				sStrand := int8(1)
				if hsp.HitFrame < 0 {
					sStrand = -1
				}

				qs, qe := hsp.QueryFrom-1, hsp.QueryTo
				if qe < qs {
					qs, qe = hsp.QueryTo-1, hsp.QueryFrom
				}
				ss, se := hsp.HitFrom-1, hsp.HitTo
				if se < ss {
					ss, se = hsp.HitTo-1, hsp.HitFrom
				}

				scores := map[string]float64{"expect": hsp.Evalue, "identity": identity}
				match.MatchParts = append(match.MatchParts, MatchPart{
					QueryStart: qs, QueryEnd: qe, QueryStrand: qStrand,
					SubjectStart: ss, SubjectEnd: se, SubjectStrand: sStrand,
					Scores: scores,
				})
				if match.Scores == nil || match.Scores["expect"] > hsp.Evalue {
					match.Scores = scores
				}
			}
			if len(match.MatchParts) > 0 {
				res.Matches = append(res.Matches, match)
			}
		}
		results = append(results, res)
	}
	return results, nil
}
