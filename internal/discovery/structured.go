package discovery

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"ctp/internal/domain"
)

// CTestInfo is the document printed by ctest --show-only=json-v1
type CTestInfo struct {
	Kind    string `json:"kind"`
	Version struct {
		Major int `json:"major"`
		Minor int `json:"minor"`
	} `json:"version"`
	BacktraceGraph BacktraceGraph `json:"backtraceGraph"`
	Tests          []CTestInfoTest `json:"tests"`
}

// BacktraceGraph is the shared table of files, commands and call sites
type BacktraceGraph struct {
	Files    []string        `json:"files"`
	Commands []string        `json:"commands"`
	Nodes    []BacktraceNode `json:"nodes"`
}

// BacktraceNode is a single call site
type BacktraceNode struct {
	File    int  `json:"file"`
	Command *int `json:"command,omitempty"`
	Line    *int `json:"line,omitempty"`
	Parent  *int `json:"parent,omitempty"`
}

// CTestInfoTest is one test of the structured listing
type CTestInfoTest struct {
	Name       string          `json:"name"`
	Command    []string        `json:"command"`
	Backtrace  *int            `json:"backtrace,omitempty"`
	Properties []CTestProperty `json:"properties"`
}

// CTestProperty is a test property; Value may be any JSON type
type CTestProperty struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// ParseStructuredListing parses the json-v1 listing into catalog entries
func ParseStructuredListing(data []byte) ([]domain.CatalogEntry, error) {
	var info CTestInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse ctest json listing: %w", err)
	}
	if info.Kind != "ctestInfo" {
		return nil, fmt.Errorf("unexpected ctest listing kind %q", info.Kind)
	}

	entries := make([]domain.CatalogEntry, 0, len(info.Tests))
	for _, test := range info.Tests {
		command := test.Command
		if command == nil {
			command = []string{}
		}
		entries = append(entries, domain.CatalogEntry{
			Name:        test.Name,
			CommandLine: command,
			Location:    info.BacktraceGraph.resolve(test.Backtrace),
			Labels:      labels(test.Properties),
		})
	}
	return entries, nil
}

// resolve maps a backtrace index to the declaring file and zero-based line
func (g BacktraceGraph) resolve(index *int) *domain.SourceLocation {
	if index == nil || *index < 0 || *index >= len(g.Nodes) {
		return nil
	}
	node := g.Nodes[*index]
	if node.File < 0 || node.File >= len(g.Files) {
		return nil
	}
	loc := &domain.SourceLocation{File: g.Files[node.File], Line: -1}
	if node.Line != nil && *node.Line > 0 {
		loc.Line = *node.Line - 1
	}
	return loc
}

// labels reads the LABELS property, which ctest writes as a string or a list
func labels(props []CTestProperty) []string {
	var out []string
	for _, prop := range props {
		if prop.Name != "LABELS" {
			continue
		}
		var single string
		if err := json.Unmarshal(prop.Value, &single); err == nil {
			out = append(out, single)
			continue
		}
		var many []string
		if err := json.Unmarshal(prop.Value, &many); err == nil {
			out = append(out, many...)
		}
	}
	out = lo.Uniq(lo.Compact(out))
	sort.Strings(out)
	return out
}
