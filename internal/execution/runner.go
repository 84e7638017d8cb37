package execution

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

// ToolRun is the outcome of one external tool invocation that started
type ToolRun struct {
	ExitCode int
	Output   string
}

// Runner spawns external tools
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a new Runner
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{logger: logger}
}

// Output runs a command and returns its standard output; a non-zero exit is an error
func (r *Runner) Output(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("exec", "cmd", name, "args", args, "dir", dir)
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Run runs a command to completion capturing combined output.
// A non-zero exit is reported in ToolRun, not as an error; the error is
// reserved for tools that cannot start or were stopped.
func (r *Runner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (ToolRun, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env

	r.logger.Debug("exec", "cmd", name, "args", args, "dir", dir)
	out, err := cmd.CombinedOutput()
	run := ToolRun{Output: string(out)}
	if err == nil {
		return run, nil
	}
	if ctx.Err() != nil {
		return run, errors.Mark(errors.Wrapf(ctx.Err(), "%s stopped", name), domain.ErrToolInvocation)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		run.ExitCode = exitErr.ExitCode()
		return run, nil
	}
	return run, errors.Mark(errors.Wrapf(err, "run %s", name), domain.ErrToolInvocation)
}
