package model

import "time"

// RunStatus is the journal status of a backend server run.
type RunStatus string

const (
	// RunStatusRunning indicates the process was spawned and no exit has been observed.
	RunStatusRunning RunStatus = "running"
	// RunStatusExited indicates the process exited on its own.
	RunStatusExited RunStatus = "exited"
	// RunStatusTerminated indicates the process was terminated by the shell.
	RunStatusTerminated RunStatus = "terminated"
	// RunStatusFailed indicates the process could not be launched.
	RunStatusFailed RunStatus = "failed"
)

// ServerRun is the journal record of a single backend server run.
type ServerRun struct {
	ID         string
	Executable string
	PID        int
	Status     RunStatus
	ExitCode   *int
	Error      string
	StartedAt  time.Time
	EndedAt    *time.Time
}
