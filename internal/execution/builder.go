package execution

import (
	"context"
	"fmt"

	"ctp/internal/config"
)

// Builder builds a target of a build directory before its tests run
type Builder interface {
	Build(ctx context.Context, buildDir, target string, env []string) error
}

// CMakeBuilder builds through cmake --build
type CMakeBuilder struct {
	config *config.Config
	runner ToolRunner
}

// NewCMakeBuilder creates a new CMakeBuilder
func NewCMakeBuilder(cfg *config.Config, runner ToolRunner) *CMakeBuilder {
	return &CMakeBuilder{config: cfg, runner: runner}
}

// Build runs cmake --build for one target
func (b *CMakeBuilder) Build(ctx context.Context, buildDir, target string, env []string) error {
	args := []string{"--build", buildDir, "--config", b.config.BuildConfig}
	if target != "" {
		args = append(args, "--target", target)
	}
	run, err := b.runner.Run(ctx, buildDir, env, b.config.CMakePath, args...)
	if err != nil {
		return err
	}
	if run.ExitCode != 0 {
		return fmt.Errorf("cmake --build exited with code %d", run.ExitCode)
	}
	return nil
}
