package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// CTestFile marks a directory configured by CMake with testing enabled
const CTestFile = "CTestTestfile.cmake"

// Scanner finds build directories under a root
type Scanner struct {
	ignored map[string]struct{}
}

// NewScanner creates a new Scanner that never descends into the named directories
func NewScanner(ignore []string) *Scanner {
	ignored := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignored[name] = struct{}{}
	}
	return &Scanner{ignored: ignored}
}

// Scan returns every top-most directory under root holding a CTestTestfile.cmake.
// Subdirectories of a found build directory belong to it and are not reported.
func (s *Scanner) Scan(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	switch {
	case err != nil:
		return nil, errors.Wrapf(err, "build path %s", root)
	case !info.IsDir():
		return nil, errors.Newf("build path is not a directory: %s", root)
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.ignores(d.Name()) {
			return filepath.SkipDir
		}
		if isBuildDir(path) {
			found = append(found, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}
	return found, nil
}

// ignores reports whether a directory name is hidden or configured to be skipped
func (s *Scanner) ignores(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, skip := s.ignored[name]
	return skip
}

func isBuildDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, CTestFile))
	return err == nil && !info.IsDir()
}
