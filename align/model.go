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

// Package align implements the alignment-result model and the lazy,
// composable filter pipeline of §4.F: parsers for XML blast, tabular blast
// and exonerate-cigar turn external aligner output into a Result, and a
// sequence of mappers/predicates refine it while keeping Match geometry
// consistent with its MatchParts.
package align

import "github.com/OpenSourceCancer/franklin/seq"

// MatchPart is a single gap-free alignment segment (an HSP) within a Match.
// Coordinates are 0-based half-open, normalised on ingest regardless of the
// source format's native coordinate system.
type MatchPart struct {
	QueryStart   int64
	QueryEnd     int64
	QueryStrand  int8 // +1 or -1
	SubjectStart int64
	SubjectEnd   int64
	SubjectStrand int8

	Scores map[string]float64
}

// Match is one hit of a query against a subject, composed of one or more
// MatchParts. Start/End/SubjectStart/SubjectEnd are maintained as the
// min/max of the MatchParts' corresponding coordinates by the fix-matches
// stage; callers must not rely on them being consistent before that stage
// runs.
type Match struct {
	Subject      string
	Start        int64
	End          int64
	SubjectStart int64
	SubjectEnd   int64
	Scores       map[string]float64
	MatchParts   []MatchPart
}

// Result is a query sequence together with all of its Matches. Query is
// never nil: parsers that only ever see a query's name/def (every format
// §4.F supports) construct it as a zero-length *seq.Sequence carrying just
// that name, since alignment result formats do not themselves carry the
// query's bases.
type Result struct {
	Query   *seq.Sequence
	Matches []Match
}

// queryOnly builds the *seq.Sequence a Result.Query holds when a parser has
// only seen the query's name, never its bases (every format §4.F supports).
func queryOnly(name string) *seq.Sequence {
	return &seq.Sequence{Name: name}
}

// Clone returns a deep copy of r, used as the mandatory first pipeline
// stage (§4.F) so that later mapper stages never mutate the parser's
// original Result.
func (r *Result) Clone() *Result {
	out := &Result{Query: r.Query, Matches: make([]Match, len(r.Matches))}
	for i, m := range r.Matches {
		nm := m
		nm.Scores = cloneScores(m.Scores)
		nm.MatchParts = make([]MatchPart, len(m.MatchParts))
		for j, mp := range m.MatchParts {
			nmp := mp
			nmp.Scores = cloneScores(mp.Scores)
			nm.MatchParts[j] = nmp
		}
		out.Matches[i] = nm
	}
	return out
}

func cloneScores(s map[string]float64) map[string]float64 {
	if s == nil {
		return nil
	}
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
