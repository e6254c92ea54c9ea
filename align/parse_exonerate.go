package align

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseExonerateCigar reads an exonerate "cigar" line stream:
// "cigar_like: qname qs qe qstrand sname ss se sstrand score qlen slen sim".
// Coordinates are 0-based half-open on the wire already; strand is ±1. One
// line produces one single-match-part Match, grouped by qname in order of
// first appearance. The score keys populated are "score" and "similarity".
func ParseExonerateCigar(r io.Reader) ([]*Result, error) {
	scanner := bufio.NewScanner(r)
	order := make([]string, 0)
	byQuery := make(map[string]*Result)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 13 || fields[0] != "cigar_like:" {
			return nil, errors.Errorf("align: exonerate line %d: expected 13 \"cigar_like:\"-prefixed fields, got %d", lineNo, len(fields))
		}
		qname := fields[1]
		qs, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: qs", lineNo)
		}
		qe, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: qe", lineNo)
		}
		qstrand, err := strconv.ParseInt(fields[4], 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: qstrand", lineNo)
		}
		sname := fields[5]
		ss, err := strconv.ParseInt(fields[6], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: ss", lineNo)
		}
		se, err := strconv.ParseInt(fields[7], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: se", lineNo)
		}
		sstrand, err := strconv.ParseInt(fields[8], 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: sstrand", lineNo)
		}
		score, err := strconv.ParseFloat(fields[9], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: score", lineNo)
		}
		// fields[10], fields[11] are qlen/slen; not needed per-record here,
		// the caller supplies sequence lengths to LengthStage directly.
		sim, err := strconv.ParseFloat(fields[12], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "align: exonerate line %d: similarity", lineNo)
		}

		part := MatchPart{
			QueryStart: qs, QueryEnd: qe, QueryStrand: int8(qstrand),
			SubjectStart: ss, SubjectEnd: se, SubjectStrand: int8(sstrand),
			Scores: map[string]float64{"score": score, "similarity": sim},
		}
		res, ok := byQuery[qname]
		if !ok {
			res = &Result{Query: queryOnly(qname)}
			byQuery[qname] = res
			order = append(order, qname)
		}
		res.Matches = append(res.Matches, Match{
			Subject:    sname,
			Scores:     map[string]float64{"score": score, "similarity": sim},
			MatchParts: []MatchPart{part},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "align: reading exonerate cigar stream")
	}
	out := make([]*Result, 0, len(order))
	for _, q := range order {
		out = append(out, byQuery[q])
	}
	return out, nil
}
