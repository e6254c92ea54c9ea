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

// Package pileup streams per-column aligned-read observations out of a
// sorted, indexed binary alignment store (see encoding/fasta for the
// companion reference-sequence side).
package pileup

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"
)

// PosType is the integer type used to represent genomic positions.
type PosType = int64

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = PosType(1)<<63 - 1

// StrandType describes which strand an observation is aligned to.
type StrandType int

const (
	// StrandNone means undefined strand (unpaired or inconsistent flags).
	StrandNone StrandType = iota
	// StrandFwd means the observation's read is on the forward strand.
	StrandFwd
	// StrandRev means the observation's read is on the reverse strand.
	StrandRev
)

// StrandTypeToASCIITable is the StrandType -> ASCII mapping.
var StrandTypeToASCIITable = [...]byte{'.', '+', '-'}

// GetStrand returns the strand a read is aligned to.
func GetStrand(samr *sam.Record) StrandType {
	if samr.Flags&sam.Unmapped != 0 {
		return StrandNone
	}
	if samr.Flags&sam.Reverse != 0 {
		return StrandRev
	}
	return StrandFwd
}

// ParseCols parses a column-set-descriptor string (e.g. "+depth,-qual") into a
// bitset for internal use, patching defaultColBitset if every term carries a
// +/- prefix, or replacing it outright if none do. Mixing prefixed and
// unprefixed terms is a configuration error.
func ParseCols(colsParam string, colNameMap map[string]int, defaultColBitset int) (colBitset int, err error) {
	if colsParam == "" {
		return defaultColBitset, nil
	}
	parts := strings.Split(colsParam, ",")
	firstChar := parts[0][0]
	if firstChar == '+' || firstChar == '-' {
		colBitset = defaultColBitset
		for _, part := range parts {
			firstChar = part[0]
			if firstChar != '+' && firstChar != '-' {
				return 0, fmt.Errorf("parseCols: either all terms must be preceded by +/-, or none can be")
			}
			v, ok := colNameMap[part[1:]]
			if !ok {
				return 0, fmt.Errorf("parseCols: %v not found", part[1:])
			}
			if firstChar == '+' {
				colBitset |= v
			} else {
				colBitset &= ^v
			}
		}
		return colBitset, nil
	}
	for _, part := range parts {
		firstChar = part[0]
		if firstChar == '+' || firstChar == '-' {
			return 0, fmt.Errorf("parseCols: either all terms must be preceded by +/-, or none can be")
		}
		v, ok := colNameMap[part]
		if !ok {
			return 0, fmt.Errorf("parseCols: %v not found", part)
		}
		colBitset |= v
	}
	return colBitset, nil
}
