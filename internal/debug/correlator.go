package debug

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"ctp/internal/domain"
)

// Correlator runs one test at a time under a Debugger and waits for the
// session it started to end
type Correlator struct {
	debugger Debugger
	nonce    atomic.Uint64
	logger   *log.Logger
}

// NewCorrelator creates a new Correlator
func NewCorrelator(debugger Debugger, logger *log.Logger) *Correlator {
	if logger == nil {
		logger = log.Default()
	}
	return &Correlator{debugger: debugger, logger: logger}
}

// NextMarker returns a fresh launch marker
func (c *Correlator) NextMarker() string {
	return "ctp-debug-" + strconv.FormatUint(c.nonce.Add(1), 10)
}

// LaunchAndWait starts entry under the debugger and blocks until its
// session terminates or ctx is done. On cancellation the session is
// stopped if it already started; a session that never started is left alone.
func (c *Correlator) LaunchAndWait(ctx context.Context, buildDir string, entry domain.CatalogEntry, env []string) error {
	if len(entry.CommandLine) == 0 {
		return errors.Wrapf(domain.ErrCatalogMismatch, "test %q has no command line to debug", entry.Name)
	}

	w := newWaiter(c.NextMarker())
	stopStarted := c.debugger.OnSessionStarted(w.started)
	stopTerminated := c.debugger.OnSessionTerminated(w.terminated)
	defer stopTerminated()
	defer stopStarted()

	cfg := Configuration{
		Name:    entry.Name,
		Program: entry.CommandLine[0],
		Args:    entry.CommandLine[1:],
		Dir:     buildDir,
		Env:     env,
		Marker:  w.marker,
	}
	c.logger.Debug("starting debug session", "test", entry.Name, "marker", w.marker)
	if err := c.debugger.Start(ctx, cfg); err != nil {
		return errors.Wrapf(err, "start debugger for %s", entry.Name)
	}

	var id string
	select {
	case id = <-w.start:
	case <-ctx.Done():
		select {
		case id = <-w.start:
		default:
			c.logger.Debug("debug launch cancelled before session start", "test", entry.Name)
			return nil
		}
	}

	select {
	case <-w.done:
		c.logger.Debug("debug session terminated", "test", entry.Name, "session", id)
	case <-ctx.Done():
		c.logger.Info("stopping debug session", "test", entry.Name, "session", id)
		if err := c.debugger.StopSession(context.WithoutCancel(ctx), id); err != nil {
			return errors.Wrapf(err, "stop debug session %s", id)
		}
	}
	return nil
}

// waiter resolves the session id from the first started event carrying its
// marker, then closes done on the terminated event for that id. Terminations
// seen before the id is known are remembered.
type waiter struct {
	marker string
	start  chan string
	done   chan struct{}

	mu    sync.Mutex
	id    string
	ended map[string]bool
	once  sync.Once
}

func newWaiter(marker string) *waiter {
	return &waiter{
		marker: marker,
		start:  make(chan string, 1),
		done:   make(chan struct{}),
		ended:  make(map[string]bool),
	}
}

func (w *waiter) started(s Session) {
	if s.Marker != w.marker {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.id != "" {
		return
	}
	w.id = s.ID
	w.start <- s.ID
	if w.ended[s.ID] {
		w.finish()
	}
}

func (w *waiter) terminated(s Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.id == "" {
		w.ended[s.ID] = true
		return
	}
	if s.ID == w.id {
		w.finish()
	}
}

func (w *waiter) finish() {
	w.once.Do(func() { close(w.done) })
}
