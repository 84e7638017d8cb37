package execution

import (
	"regexp"
	"strconv"
	"strings"

	"ctp/internal/config"
)

// ExactNameFilter returns a ctest -R pattern matching exactly the given names
func ExactNameFilter(names ...string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	if len(quoted) == 1 {
		return "^" + quoted[0] + "$"
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

// CTestArgs assembles the ctest command line for a run over the given test names.
// No names means every test of the build directory.
func CTestArgs(cfg *config.Config, names []string) []string {
	args := append([]string{}, cfg.DefaultArgs...)
	args = append(args, cfg.ExtraArgs...)
	if cfg.TestPreset != "" {
		args = append(args, "--preset", cfg.TestPreset)
	} else {
		args = append(args, "-C", cfg.BuildConfig)
	}
	args = append(args, "-j", strconv.Itoa(cfg.JobCount()))
	if len(names) > 0 {
		args = append(args, "-R", ExactNameFilter(names...))
	}
	return args
}
