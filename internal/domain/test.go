package domain

// SourceLocation points at the CMake line that declared a test.
// Line is zero-based; -1 when the backtrace carries no line.
type SourceLocation struct {
	File string
	Line int
}

// CatalogEntry represents one discovered test, independent of any run
type CatalogEntry struct {
	Name        string          // Test name as known to ctest
	CommandLine []string        // Full command (empty for legacy discovery)
	Location    *SourceLocation // Declaration site, nil when unknown
	Labels      []string        // Sorted, de-duplicated LABELS property
}

// HasLabel reports whether the entry carries the given label
func (e CatalogEntry) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}
