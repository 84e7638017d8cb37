package execution

import (
	"context"

	"ctp/internal/domain"
	"ctp/internal/tree"
)

// Executor runs the tests under a set of tree nodes
type Executor interface {
	Execute(ctx context.Context, nodes []*tree.Node) (*Session, domain.ResultCode)
}

// Reporter receives node state transitions and test output as a run proceeds.
// Transitions arrive in tree pre-order.
type Reporter interface {
	Enqueued(n *tree.Node)
	Started(n *tree.Node)
	Finished(n *tree.Node, status domain.NodeStatus)
	Output(text string)
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Enqueued(*tree.Node)                    {}
func (NopReporter) Started(*tree.Node)                     {}
func (NopReporter) Finished(*tree.Node, domain.NodeStatus) {}
func (NopReporter) Output(string)                          {}

// ToolRunner runs an external tool to completion
type ToolRunner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (ToolRun, error)
}

// ResultReader returns the latest snapshot of a build directory, or nil
// when no result file exists
type ResultReader interface {
	Latest(buildDir string) (*domain.TestingSnapshot, error)
}

// DebugLauncher runs one test under a debugger and waits for it to end
type DebugLauncher interface {
	LaunchAndWait(ctx context.Context, buildDir string, entry domain.CatalogEntry, env []string) error
}
