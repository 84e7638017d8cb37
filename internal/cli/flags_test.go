package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/config"
)

func TestFlags_Apply(t *testing.T) {
	dir := t.TempDir()
	yaml := "build_path: out\njobs: 2\nctest_path: /opt/ctest\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ctp.yaml"), []byte(yaml), 0644))

	t.Run("file settings", func(t *testing.T) {
		cfg := config.New()
		flags := &Flags{ProjectPath: dir}
		require.NoError(t, flags.Apply(cfg))

		assert.Equal(t, "out", cfg.BuildPath)
		assert.Equal(t, 2, cfg.Jobs)
		assert.Equal(t, "/opt/ctest", cfg.CTestPath)
	})

	t.Run("flags override file", func(t *testing.T) {
		cfg := config.New()
		flags := &Flags{ProjectPath: dir, BuildPath: "cmake-build", Jobs: 6, Sequential: true, Labels: []string{"fast"}}
		require.NoError(t, flags.Apply(cfg))

		assert.Equal(t, "cmake-build", cfg.BuildPath)
		assert.Equal(t, 6, cfg.Jobs)
		assert.False(t, cfg.AllowParallelJobs)
		assert.Equal(t, 1, cfg.JobCount())
		assert.Equal(t, []string{"fast"}, cfg.Flags.Labels)
	})
}
