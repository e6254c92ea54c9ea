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

// Package restriction wraps the external restriction-mapper "remap" tool
// (see §6): given a fasta sequence and an enzyme catalogue it reports which
// enzymes cut. The tool itself is an external collaborator and is not
// reimplemented here, per spec.md's explicit non-goals.
package restriction

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"text/template"

	"github.com/biogo/external"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// CommonEnzymes is the default 23-enzyme catalogue used when a caller does
// not request the tool's full catalogue, grounded on
// biolib/snv/snv.py's COMMON_ENZYMES.
var CommonEnzymes = []string{
	"ecori", "smai", "bamhi", "alui", "bglii", "sali", "bgli", "clai",
	"bsteii", "taqi", "psti", "pvuii", "hindiii", "ecorv", "xbai", "haeiii",
	"xhoi", "kpni", "scai", "banii", "hinfi", "drai", "apai", "asp718",
}

// Remap describes an invocation of the external restriction-mapper binary,
// following the biogo/external struct-tag convention used throughout the
// pack's external-tool wrappers (e.g. kortschak-loopy/blasr).
type Remap struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}remap{{end}}"`

	Input      string   `buildarg:"{{.}}"`
	AllEnzymes bool     `buildarg:"{{if .}}-a{{end}}"`
	Enzymes    []string `buildarg:"{{if .}}-e{{split}}{{join .}}{{end}}"`
}

func join(a interface{}) string {
	return strings.Join(a.([]string), ",")
}

// BuildCommand returns an exec.Cmd built from r's parameters.
func (r Remap) BuildCommand() (*exec.Cmd, error) {
	if r.Input == "" {
		return nil, errors.New("restriction: missing required Input argument")
	}
	cl := external.Must(external.Build(r, template.FuncMap{"join": join}))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Mapper invokes the external remap tool, each call running in its own
// temporary working directory so that concurrent invocations do not
// collide (§5).
type Mapper struct {
	// Cmd overrides the remap binary name/path; empty uses "remap".
	Cmd string
	// TempDir is the parent directory for per-call scratch directories;
	// empty uses os.TempDir().
	TempDir string

	cacheMu sync.Mutex
	cache   map[uint64]map[string]bool
}

// cutCacheKey fingerprints a (sequence, allEnzymes) pair so that repeated
// Cut calls against the same hypothetical allele reconstruction (common
// across the pairwise cap-enzyme comparisons in annotate.CapEnzymes, since
// every pair sharing the INVARIANT allele reconstructs it identically) skip
// the external tool invocation entirely.
func cutCacheKey(sequence string, allEnzymes bool) uint64 {
	h := farm.Hash64([]byte(sequence))
	if allEnzymes {
		h ^= 1
	}
	return h
}

// Cut runs the external restriction-mapper against sequence and returns the
// set of enzyme names reported to cut it. allEnzymes requests the tool's
// full catalogue instead of CommonEnzymes. Results are memoized per Mapper.
func (m *Mapper) Cut(sequence string, allEnzymes bool) (map[string]bool, error) {
	key := cutCacheKey(sequence, allEnzymes)
	m.cacheMu.Lock()
	if cached, ok := m.cache[key]; ok {
		m.cacheMu.Unlock()
		return cached, nil
	}
	m.cacheMu.Unlock()

	result, err := m.cut(sequence, allEnzymes)
	if err != nil {
		return nil, err
	}

	m.cacheMu.Lock()
	if m.cache == nil {
		m.cache = make(map[uint64]map[string]bool)
	}
	m.cache[key] = result
	m.cacheMu.Unlock()
	return result, nil
}

func (m *Mapper) cut(sequence string, allEnzymes bool) (map[string]bool, error) {
	dir, err := os.MkdirTemp(m.TempDir, "remap-")
	if err != nil {
		return nil, errors.Wrap(err, "restriction: creating scratch directory")
	}
	defer func() {
		if e := os.RemoveAll(dir); e != nil {
			log.Error.Printf("restriction: cleaning up %s: %v", dir, e)
		}
	}()

	inputPath := dir + "/input.fa"
	if err := os.WriteFile(inputPath, []byte(">query\n"+sequence+"\n"), 0644); err != nil {
		return nil, errors.Wrap(err, "restriction: writing scratch fasta")
	}

	r := Remap{Cmd: m.Cmd, Input: inputPath, AllEnzymes: allEnzymes}
	if !allEnzymes {
		r.Enzymes = CommonEnzymes
	}
	cmd, err := r.BuildCommand()
	if err != nil {
		return nil, err
	}
	var stdout, stderr bytes.Buffer
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "restriction: remap failed: %s", stderr.String())
	}
	return parseCutEnzymes(stdout.Bytes())
}

// parseCutEnzymes extracts the "# Enzymes that cut" section from a remap
// report into a set of enzyme names.
func parseCutEnzymes(report []byte) (map[string]bool, error) {
	result := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(report))
	inSection := false
	found := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# Enzymes that cut") {
			inSection = true
			found = true
			continue
		}
		if !inSection {
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#") && found {
				inSection = false
			}
			continue
		}
		name := strings.Fields(line)
		if len(name) > 0 {
			result[name[0]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "restriction: reading remap report")
	}
	if !found {
		return nil, fmt.Errorf("restriction: remap report missing \"# Enzymes that cut\" section")
	}
	return result, nil
}
