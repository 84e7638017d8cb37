package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/config"
	"ctp/internal/domain"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
}

func (f *fakeRunner) Output(_ context.Context, _ string, _ []string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	key := args[0]
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

func newTestConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	return cfg
}

func TestCatalog_Discover(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		legacyFlag bool
		expectJSON bool
	}{
		{name: "structured on new ctest", version: "ctest version 3.28.1\n", expectJSON: true},
		{name: "structured at threshold", version: "ctest version 3.14.0\n", expectJSON: true},
		{name: "legacy below threshold", version: "ctest version 3.13.5\n", expectJSON: false},
		{name: "legacy on unparseable version", version: "garbage", expectJSON: false},
		{name: "legacy when forced", version: "ctest version 3.28.1\n", legacyFlag: true, expectJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Flags.Legacy = tt.legacyFlag
			runner := &fakeRunner{outputs: map[string]string{
				"--version":           tt.version,
				"--show-only=json-v1": structuredListing,
				"-N":                  "  Test  #1: legacy_only\n",
			}}

			entries, err := NewCatalog(cfg, runner, nil).Discover(context.Background(), "/build")
			require.NoError(t, err)

			if tt.expectJSON {
				require.Len(t, entries, 4)
				assert.Equal(t, "unit_core", entries[0].Name)
			} else {
				require.Len(t, entries, 1)
				assert.Equal(t, "legacy_only", entries[0].Name)
			}
		})
	}
}

func TestCatalog_Discover_ProbesVersionOnce(t *testing.T) {
	cfg := newTestConfig(t)
	runner := &fakeRunner{outputs: map[string]string{
		"--version":           "ctest version 3.28.1",
		"--show-only=json-v1": structuredListing,
	}}
	catalog := NewCatalog(cfg, runner, nil)

	for i := 0; i < 3; i++ {
		_, err := catalog.Discover(context.Background(), "/build")
		require.NoError(t, err)
	}

	probes := 0
	for _, call := range runner.calls {
		if call[1] == "--version" {
			probes++
		}
	}
	assert.Equal(t, 1, probes)
	assert.Equal(t, "3.28.1", catalog.ToolVersion().String())
}

func TestCatalog_Discover_Args(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Flags.Legacy = true

	runner := &fakeRunner{outputs: map[string]string{}}
	_, err := NewCatalog(cfg, runner, nil).Discover(context.Background(), "/build")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctest", "-N", "-C", "Debug"}, runner.calls[0])

	cfg.TestPreset = "ci"
	runner = &fakeRunner{outputs: map[string]string{}}
	_, err = NewCatalog(cfg, runner, nil).Discover(context.Background(), "/build")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctest", "-N", "--preset", "ci"}, runner.calls[0])
}

func TestCatalog_Discover_Errors(t *testing.T) {
	t.Run("tool failure is distinct from zero tests", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Flags.Legacy = true
		runner := &fakeRunner{errs: map[string]error{"-N": errors.New("exit status 8")}}

		entries, err := NewCatalog(cfg, runner, nil).Discover(context.Background(), "/build")
		require.Error(t, err)
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, domain.ErrToolInvocation)
		assert.True(t, strings.Contains(err.Error(), "/build"))
	})

	t.Run("zero tests is not an error", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Flags.Legacy = true
		runner := &fakeRunner{outputs: map[string]string{"-N": "Total Tests: 0\n"}}

		entries, err := NewCatalog(cfg, runner, nil).Discover(context.Background(), "/build")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ctest path unset", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.CTestPath = ""
		_, err := NewCatalog(cfg, &fakeRunner{}, nil).Discover(context.Background(), "/build")
		assert.ErrorIs(t, err, domain.ErrToolPathUnset)
	})

	t.Run("preset required", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.RequirePreset = true
		_, err := NewCatalog(cfg, &fakeRunner{}, nil).Discover(context.Background(), "/build")
		assert.ErrorIs(t, err, domain.ErrPresetRequired)
	})
}

func TestParseToolVersion(t *testing.T) {
	v, err := ParseToolVersion("ctest version 3.27.0-rc2\n\nCMake suite maintained and supported by Kitware (kitware.com/cmake).\n")
	require.NoError(t, err)
	assert.Equal(t, "3.27.0-rc2", v.Original())

	_, err = ParseToolVersion("cmake version 3.27.0")
	assert.Error(t, err)
}
