package execution

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/config"
	"ctp/internal/domain"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunner_Run(t *testing.T) {
	requireShell(t)
	runner := NewRunner(log.New(&strings.Builder{}))

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		run, err := runner.Run(context.Background(), t.TempDir(), nil, "sh", "-c", "echo out; echo err >&2; exit 8")
		require.NoError(t, err)
		assert.Equal(t, 8, run.ExitCode)
		assert.Contains(t, run.Output, "out")
		assert.Contains(t, run.Output, "err")
	})

	t.Run("missing tool", func(t *testing.T) {
		_, err := runner.Run(context.Background(), t.TempDir(), nil, "ctp-no-such-tool")
		assert.True(t, errors.Is(err, domain.ErrToolInvocation))
	})

	t.Run("stopped", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, t.TempDir(), nil, "sh", "-c", "sleep 5")
		assert.True(t, errors.Is(err, domain.ErrToolInvocation))
	})
}

func TestRunner_Output(t *testing.T) {
	requireShell(t)
	runner := NewRunner(log.New(&strings.Builder{}))

	out, err := runner.Output(context.Background(), t.TempDir(), nil, "sh", "-c", "echo ctest version 3.28.1")
	require.NoError(t, err)
	assert.Equal(t, "ctest version 3.28.1\n", string(out))

	_, err = runner.Output(context.Background(), t.TempDir(), nil, "sh", "-c", "echo bad >&2; exit 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestCMakeBuilder_Build(t *testing.T) {
	cfg := config.New()
	cfg.CMakePath = "/usr/bin/cmake"
	cfg.BuildConfig = "Release"

	t.Run("arguments", func(t *testing.T) {
		tool := &fakeTool{errs: map[string]error{}}
		builder := NewCMakeBuilder(cfg, tool)

		require.NoError(t, builder.Build(context.Background(), "/build", "unit_core", nil))
		require.Len(t, tool.calls, 1)
		assert.Equal(t, []string{"--build", "/build", "--config", "Release", "--target", "unit_core"}, tool.calls[0].args)
	})

	t.Run("failing build", func(t *testing.T) {
		builder := NewCMakeBuilder(cfg, exitTool(2))
		err := builder.Build(context.Background(), "/build", "", nil)
		assert.EqualError(t, err, "cmake --build exited with code 2")
	})
}

type exitTool int

func (e exitTool) Run(context.Context, string, []string, string, ...string) (ToolRun, error) {
	return ToolRun{ExitCode: int(e)}, nil
}
