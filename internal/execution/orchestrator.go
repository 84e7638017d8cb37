package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/tree"
)

var _ Executor = (*Orchestrator)(nil)

// Orchestrator walks the requested nodes, builds each build scope, runs
// ctest for its leaves and classifies the results.
//
// The ctx passed to Execute is the cooperative cancellation token: it is
// polled before each leaf is dispatched and never interrupts a running
// ctest. Stop aborts the invocation in flight.
type Orchestrator struct {
	config    *config.Config
	runner    ToolRunner
	builder   Builder
	results   ResultReader
	scheduler Scheduler
	debugger  DebugLauncher
	reporter  Reporter
	logger    *log.Logger

	mu   sync.Mutex
	stop context.CancelFunc
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(cfg *config.Config, runner ToolRunner, builder Builder, results ResultReader, scheduler Scheduler, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		config:    cfg,
		runner:    runner,
		builder:   builder,
		results:   results,
		scheduler: scheduler,
		reporter:  NopReporter{},
		logger:    logger,
	}
}

// SetReporter sets the receiver of state transitions
func (o *Orchestrator) SetReporter(r Reporter) {
	if r == nil {
		r = NopReporter{}
	}
	o.reporter = r
}

// SetDebugger enables debug runs through the given launcher
func (o *Orchestrator) SetDebugger(d DebugLauncher) {
	o.debugger = d
}

// Stop aborts the ctest or build invocation currently running, if any
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stop != nil {
		o.stop()
	}
}

// Execute runs every leaf under nodes
func (o *Orchestrator) Execute(ctx context.Context, nodes []*tree.Node) (*Session, domain.ResultCode) {
	session := newSession(nodes)
	defer func() { session.Duration = time.Since(session.StartedAt) }()

	leaves := collectLeaves(nodes)
	if len(leaves) == 0 {
		return session, domain.ResultNoTests
	}

	if code, err := o.preflight(); err != nil {
		for _, leaf := range leaves {
			o.finish(session, leaf, o.errored(leaf, err.Error()))
		}
		o.aggregate(session, nodes)
		return session, code
	}

	stopCtx, stop := context.WithCancel(context.Background())
	o.mu.Lock()
	o.stop = stop
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.stop = nil
		o.mu.Unlock()
		stop()
	}()

	for _, leaf := range leaves {
		leaf.State = domain.RunStateEnqueued
		o.reporter.Enqueued(leaf)
	}

	scopes, orphans := o.scheduler.Schedule(leaves)
	for _, leaf := range orphans {
		o.finish(session, leaf, o.errored(leaf, domain.ErrNoBuildScope.Error()))
	}
	for _, scope := range scopes {
		o.runScope(ctx, stopCtx, session, scope)
	}

	o.aggregate(session, nodes)

	for _, st := range session.Statuses() {
		if st.State.IsFailure() {
			return session, domain.ResultToolFailed
		}
	}
	return session, domain.ResultSuccess
}

func (o *Orchestrator) preflight() (domain.ResultCode, error) {
	if o.config.CTestPath == "" {
		return domain.ResultToolPathUnset, domain.ErrToolPathUnset
	}
	if o.config.RequirePreset && o.config.TestPreset == "" {
		return domain.ResultPresetRequired, domain.ErrPresetRequired
	}
	return domain.ResultSuccess, nil
}

// runScope builds one project and runs its leaves; failures stay inside the scope
func (o *Orchestrator) runScope(ctx, stopCtx context.Context, session *Session, scope Scope) {
	if ctx.Err() != nil {
		o.skipAll(session, scope.Leaves)
		return
	}

	env, err := o.config.Environment()
	if err != nil {
		o.failScope(session, scope.Leaves, err.Error())
		return
	}

	if !o.config.Flags.NoBuild && o.builder != nil {
		o.logger.Info("building", "dir", scope.BuildDir, "target", o.config.BuildTarget)
		if err := o.builder.Build(stopCtx, scope.BuildDir, o.config.BuildTarget, env); err != nil {
			o.logger.Error("build failed", "dir", scope.BuildDir, "err", err)
			o.failScope(session, scope.Leaves, fmt.Sprintf("Build failed: %v", err))
			return
		}
	}

	switch {
	case o.config.Flags.Debug && o.debugger != nil:
		o.debugLeaves(ctx, stopCtx, session, scope, env)
	case !o.config.AllowParallelJobs:
		o.runSequential(ctx, stopCtx, session, scope, env)
	default:
		o.runBatch(ctx, stopCtx, session, scope, env)
	}
}

// runSequential invokes ctest once per leaf
func (o *Orchestrator) runSequential(ctx, stopCtx context.Context, session *Session, scope Scope, env []string) {
	for i, leaf := range scope.Leaves {
		if ctx.Err() != nil {
			o.skipAll(session, scope.Leaves[i:])
			return
		}
		entry, ok := leaf.Entry()
		if !ok {
			o.finish(session, leaf, o.errored(leaf, domain.ErrCatalogMismatch.Error()))
			continue
		}

		o.start(leaf)
		snapshot, err := o.invoke(stopCtx, scope.BuildDir, env, []string{entry.Name})
		if errors.Is(err, domain.ErrToolInvocation) {
			o.logger.Error("ctest failed to run", "dir", scope.BuildDir, "err", err)
			o.failScope(session, scope.Leaves[i:], err.Error())
			return
		}
		if err != nil {
			o.finish(session, leaf, o.errored(leaf, err.Error()))
			continue
		}
		o.classifyLeaves(session, []*tree.Node{leaf}, snapshot)
	}
}

// runBatch invokes ctest once for the whole scope and lets it parallelize
func (o *Orchestrator) runBatch(ctx, stopCtx context.Context, session *Session, scope Scope, env []string) {
	if ctx.Err() != nil {
		o.skipAll(session, scope.Leaves)
		return
	}

	var names []string
	var runnable []*tree.Node
	for _, leaf := range scope.Leaves {
		entry, ok := leaf.Entry()
		if !ok {
			o.finish(session, leaf, o.errored(leaf, domain.ErrCatalogMismatch.Error()))
			continue
		}
		names = append(names, entry.Name)
		runnable = append(runnable, leaf)
	}
	if len(runnable) == 0 {
		return
	}

	for _, leaf := range runnable {
		o.start(leaf)
	}
	snapshot, err := o.invoke(stopCtx, scope.BuildDir, env, names)
	if err != nil {
		o.logger.Error("ctest run failed", "dir", scope.BuildDir, "err", err)
		o.failScope(session, runnable, err.Error())
		return
	}
	o.classifyLeaves(session, runnable, snapshot)
}

// debugLeaves launches each leaf under the debugger. A debugged run has no
// verdict, so leaves end Skipped.
func (o *Orchestrator) debugLeaves(ctx, stopCtx context.Context, session *Session, scope Scope, env []string) {
	for i, leaf := range scope.Leaves {
		if ctx.Err() != nil {
			o.skipAll(session, scope.Leaves[i:])
			return
		}
		entry, ok := leaf.Entry()
		if !ok {
			o.finish(session, leaf, o.errored(leaf, domain.ErrCatalogMismatch.Error()))
			continue
		}
		o.start(leaf)
		if err := o.debugger.LaunchAndWait(ctx, scope.BuildDir, entry, env); err != nil {
			o.logger.Warn("debug session failed", "test", entry.Name, "err", err)
		}
		o.finish(session, leaf, domain.NodeStatus{NodeID: leaf.ID, State: domain.RunStateSkipped, Message: "Debugged"})
	}
}

// invoke runs ctest for the given names and reads back the result file
func (o *Orchestrator) invoke(stopCtx context.Context, buildDir string, env []string, names []string) (*domain.TestingSnapshot, error) {
	args := CTestArgs(o.config, names)
	run, err := o.runner.Run(stopCtx, buildDir, env, o.config.CTestPath, args...)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("ctest finished", "dir", buildDir, "exit", run.ExitCode)

	snapshot, err := o.results.Latest(buildDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read test results")
	}
	return snapshot, nil
}

// classifyLeaves turns a snapshot into leaf states. Output of every test in
// the snapshot is forwarded, including tests that were not requested.
func (o *Orchestrator) classifyLeaves(session *Session, leaves []*tree.Node, snapshot *domain.TestingSnapshot) {
	if snapshot != nil {
		for _, result := range snapshot.Tests {
			if result.Output != "" {
				o.reporter.Output(result.Output)
			}
		}
	}

	for _, leaf := range leaves {
		entry, _ := leaf.Entry()
		var result *domain.TestResult
		if snapshot != nil {
			if r, ok := snapshot.Find(entry.Name); ok {
				result = r
			}
		}
		o.finish(session, leaf, Classify(leaf.ID, result))
	}
}

// aggregate folds leaf states into every non-leaf node under the requested nodes
func (o *Orchestrator) aggregate(session *Session, nodes []*tree.Node) {
	for _, n := range nodes {
		n.Walk(func(child *tree.Node) {
			if child.IsLeaf() {
				return
			}
			status := Aggregate(child, session)
			child.State = status.State
			session.record(status)
			o.reporter.Finished(child, status)
		})
	}
}

// Aggregate returns the state of a non-leaf node: the first failing leaf in
// pre-order, Skipped when every leaf was skipped, Passed otherwise
// (including a node without leaves).
func Aggregate(n *tree.Node, session *Session) domain.NodeStatus {
	status := domain.NodeStatus{NodeID: n.ID, State: domain.RunStatePassed}
	leaves := n.Leaves()
	skipped := 0
	for _, leaf := range leaves {
		st, ok := session.Status(leaf.ID)
		if !ok {
			continue
		}
		status.Duration += st.Duration
		if st.State.IsFailure() && !status.State.IsFailure() {
			status.State = st.State
			status.Message = fmt.Sprintf("%s: %s", leaf.Label, st.Message)
		}
		if st.State == domain.RunStateSkipped {
			skipped++
		}
	}
	if !status.State.IsFailure() && len(leaves) > 0 && skipped == len(leaves) {
		status.State = domain.RunStateSkipped
	}
	return status
}

func (o *Orchestrator) start(leaf *tree.Node) {
	leaf.State = domain.RunStateRunning
	o.reporter.Started(leaf)
}

func (o *Orchestrator) finish(session *Session, leaf *tree.Node, status domain.NodeStatus) {
	leaf.State = status.State
	session.record(status)
	o.reporter.Finished(leaf, status)
}

func (o *Orchestrator) errored(leaf *tree.Node, message string) domain.NodeStatus {
	return domain.NodeStatus{NodeID: leaf.ID, State: domain.RunStateErrored, Message: message}
}

func (o *Orchestrator) failScope(session *Session, leaves []*tree.Node, message string) {
	for _, leaf := range leaves {
		o.finish(session, leaf, o.errored(leaf, message))
	}
}

func (o *Orchestrator) skipAll(session *Session, leaves []*tree.Node) {
	for _, leaf := range leaves {
		o.finish(session, leaf, domain.NodeStatus{NodeID: leaf.ID, State: domain.RunStateSkipped, Message: "Cancelled"})
	}
}

// collectLeaves returns the distinct leaves under nodes in pre-order
func collectLeaves(nodes []*tree.Node) []*tree.Node {
	seen := make(map[string]bool)
	var out []*tree.Node
	for _, n := range nodes {
		for _, leaf := range n.Leaves() {
			if seen[leaf.ID] {
				continue
			}
			seen[leaf.ID] = true
			out = append(out, leaf)
		}
	}
	return out
}
