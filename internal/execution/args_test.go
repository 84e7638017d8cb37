package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ctp/internal/config"
)

func TestExactNameFilter(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected string
	}{
		{name: "single", names: []string{"unit_core"}, expected: "^unit_core$"},
		{name: "escapes regex", names: []string{"Suite.Case[1]"}, expected: `^Suite\.Case\[1\]$`},
		{name: "alternation", names: []string{"a", "b+c"}, expected: `^(a|b\+c)$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExactNameFilter(tt.names...))
		})
	}
}

func TestCTestArgs(t *testing.T) {
	t.Run("config selector and jobs", func(t *testing.T) {
		cfg := config.New()
		cfg.ExtraArgs = []string{"--timeout", "30"}
		cfg.Jobs = 8

		args := CTestArgs(cfg, []string{"unit_core"})
		assert.Equal(t, []string{
			"-T", "test", "--output-on-failure",
			"--timeout", "30",
			"-C", "Debug",
			"-j", "8",
			"-R", "^unit_core$",
		}, args)
	})

	t.Run("preset replaces config", func(t *testing.T) {
		cfg := config.New()
		cfg.TestPreset = "ci"
		cfg.AllowParallelJobs = false

		args := CTestArgs(cfg, nil)
		assert.Equal(t, []string{"-T", "test", "--output-on-failure", "--preset", "ci", "-j", "1"}, args)
	})

	t.Run("does not alias default args", func(t *testing.T) {
		cfg := config.New()
		args := CTestArgs(cfg, []string{"x"})
		args[0] = "changed"
		assert.Equal(t, "-T", cfg.DefaultArgs[0])
	})
}
