package debug

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ExecDebugger runs the debuggee as a child process of a command-line
// debugger such as gdb or lldb
type ExecDebugger struct {
	command []string
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger

	mu         sync.Mutex
	processes  map[string]*exec.Cmd
	started    map[int]func(Session)
	terminated map[int]func(Session)
	next       int
}

// NewExecDebugger creates a debugger that prefixes the test command line with command
func NewExecDebugger(command []string, logger *log.Logger) *ExecDebugger {
	if logger == nil {
		logger = log.Default()
	}
	return &ExecDebugger{
		command:    command,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		logger:     logger,
		processes:  make(map[string]*exec.Cmd),
		started:    make(map[int]func(Session)),
		terminated: make(map[int]func(Session)),
	}
}

// SetOutput redirects the debugger's output streams
func (d *ExecDebugger) SetOutput(stdout, stderr io.Writer) {
	d.stdout = stdout
	d.stderr = stderr
}

// Start launches the debugger and returns once the process is running
func (d *ExecDebugger) Start(_ context.Context, cfg Configuration) error {
	argv := append(append(append([]string{}, d.command...), cfg.Program), cfg.Args...)
	if len(argv) == 0 || argv[0] == "" {
		return errors.New("debugger command is empty")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = cfg.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", argv[0])
	}

	session := Session{ID: uuid.NewString(), Marker: cfg.Marker}
	d.mu.Lock()
	d.processes[session.ID] = cmd
	d.mu.Unlock()
	d.logger.Debug("debugger started", "session", session.ID, "pid", cmd.Process.Pid, "test", cfg.Name)

	d.emit(d.started, session)
	go func() {
		if err := cmd.Wait(); err != nil {
			d.logger.Debug("debugger exited", "session", session.ID, "err", err)
		}
		d.mu.Lock()
		delete(d.processes, session.ID)
		d.mu.Unlock()
		d.emit(d.terminated, session)
	}()
	return nil
}

// OnSessionStarted subscribes to session starts
func (d *ExecDebugger) OnSessionStarted(handler func(Session)) func() {
	return d.subscribe(d.started, handler)
}

// OnSessionTerminated subscribes to session ends
func (d *ExecDebugger) OnSessionTerminated(handler func(Session)) func() {
	return d.subscribe(d.terminated, handler)
}

// StopSession kills the debugger process of a session. Unknown ids are ignored.
func (d *ExecDebugger) StopSession(_ context.Context, id string) error {
	d.mu.Lock()
	cmd, ok := d.processes[id]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrapf(err, "kill debug session %s", id)
	}
	return nil
}

func (d *ExecDebugger) subscribe(handlers map[int]func(Session), handler func(Session)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.next
	d.next++
	handlers[key] = handler
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(handlers, key)
	}
}

func (d *ExecDebugger) emit(handlers map[int]func(Session), s Session) {
	d.mu.Lock()
	snapshot := make([]func(Session), 0, len(handlers))
	for _, h := range handlers {
		snapshot = append(snapshot, h)
	}
	d.mu.Unlock()
	for _, h := range snapshot {
		h(s)
	}
}
