package discovery

import (
	"path/filepath"
	"strings"

	"ctp/internal/domain"
)

// Filter filters catalog entries by name pattern and label
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters entries by name pattern using wildcard matching.
// Supports patterns like "unit_*" or "*core*"; a pattern without wildcards matches substrings.
func (f *Filter) FilterByName(entries []domain.CatalogEntry, pattern string) []domain.CatalogEntry {
	if pattern == "" {
		return entries
	}

	var filtered []domain.CatalogEntry
	for _, entry := range entries {
		if MatchName(entry.Name, pattern) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// FilterByLabels keeps entries carrying at least one of the labels
func (f *Filter) FilterByLabels(entries []domain.CatalogEntry, labels []string) []domain.CatalogEntry {
	if len(labels) == 0 {
		return entries
	}

	var filtered []domain.CatalogEntry
	for _, entry := range entries {
		for _, label := range labels {
			if entry.HasLabel(label) {
				filtered = append(filtered, entry)
				break
			}
		}
	}
	return filtered
}

// MatchName reports whether a test name matches a wildcard pattern
func MatchName(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// If no wildcards, do a simple contains check
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// filepath.Match stops at separators; fall back to matching the literal parts in order
	if strings.Contains(pattern, "*") {
		rest := name
		nonEmpty := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			nonEmpty = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return nonEmpty
	}
	return false
}
