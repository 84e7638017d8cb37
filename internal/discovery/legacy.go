package discovery

import (
	"bufio"
	"regexp"
	"strings"

	"ctp/internal/domain"
)

// Matches lines like "  Test  #3: my_test" printed by ctest -N
var legacyTestLine = regexp.MustCompile(`^\s*Test\s+#(\d+):\s(.*)$`)

// ParseLegacyListing parses the plain-text output of ctest -N.
// Lines that are not test entries are ignored.
func ParseLegacyListing(output string) []domain.CatalogEntry {
	entries := []domain.CatalogEntry{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		match := legacyTestLine.FindStringSubmatch(strings.TrimRight(scanner.Text(), "\r"))
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[2])
		if name == "" {
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			Name:        name,
			CommandLine: []string{},
			Labels:      []string{},
		})
	}
	return entries
}
