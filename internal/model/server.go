package model

import "time"

// ServerState represents the lifecycle state of the supervised backend server.
type ServerState string

const (
	// ServerStateNotStarted indicates start has never been requested in this run.
	ServerStateNotStarted ServerState = "not_started"
	// ServerStateStarting indicates the executable is being resolved and spawned.
	ServerStateStarting ServerState = "starting"
	// ServerStateRunning indicates the process has been launched.
	// It doesn't mean the server is ready to answer requests.
	ServerStateRunning ServerState = "running"
	// ServerStateFailed indicates the launch failed.
	ServerStateFailed ServerState = "failed"
	// ServerStateTerminated indicates the process was terminated or exited on its own.
	ServerStateTerminated ServerState = "terminated"
)

// IsTerminal returns true when no more transitions can happen in this run.
func (s ServerState) IsTerminal() bool {
	return s == ServerStateFailed || s == ServerStateTerminated
}

// ServerStatus is a snapshot of the supervised backend server.
type ServerStatus struct {
	State      ServerState
	RunID      string
	Executable string
	PID        int // 0 when there is no live process handle.
	StartedAt  *time.Time
	ExitCode   *int // Set only when the process exited on its own.
}
