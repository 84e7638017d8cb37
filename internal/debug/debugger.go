// Package debug launches tests under a debugger and correlates the
// asynchronously reported debug session with the launch that caused it.
package debug

import "context"

// Configuration describes one debuggee launch. Marker is opaque to the
// debugger and is echoed back on the session it starts.
type Configuration struct {
	Name    string
	Program string
	Args    []string
	Dir     string
	Env     []string
	Marker  string
}

// Session identifies a running debug session
type Session struct {
	ID     string
	Marker string
}

// Debugger starts debug sessions and reports their lifecycle. Handlers may
// be called from any goroutine.
type Debugger interface {
	Start(ctx context.Context, cfg Configuration) error
	OnSessionStarted(handler func(Session)) (unsubscribe func())
	OnSessionTerminated(handler func(Session)) (unsubscribe func())
	StopSession(ctx context.Context, id string) error
}
