package lib

import (
	"time"

	"github.com/slok/deskshell/internal/model"
)

// ServerState is the lifecycle state of the supervised backend server.
//
// The lifecycle of a shell run is:
//
//	not_started -> starting -> running -> terminated
//
// A failed launch ends in failed. Both failed and terminated are final for the run.
type ServerState string

const (
	// ServerStateNotStarted indicates the backend was never started in this run.
	ServerStateNotStarted ServerState = "not_started"
	// ServerStateStarting indicates the executable is being resolved and launched.
	ServerStateStarting ServerState = "starting"
	// ServerStateRunning indicates the process was launched. It may not be ready yet, see [Shell.FetchStatus].
	ServerStateRunning ServerState = "running"
	// ServerStateFailed indicates the launch failed.
	ServerStateFailed ServerState = "failed"
	// ServerStateTerminated indicates the process was terminated or exited on its own.
	ServerStateTerminated ServerState = "terminated"
)

// ServerStatus is a snapshot of the backend server.
type ServerStatus struct {
	State ServerState
	// RunID is the journal run ID of the current run.
	RunID      string
	Executable string
	// PID is 0 when there is no live process.
	PID       int
	StartedAt *time.Time
	// ExitCode is set only when the process exited on its own.
	ExitCode *int
}

// RunStatus is the journal status of a backend server run.
type RunStatus string

const (
	RunStatusRunning    RunStatus = "running"
	RunStatusExited     RunStatus = "exited"
	RunStatusTerminated RunStatus = "terminated"
	RunStatusFailed     RunStatus = "failed"
)

// ServerRun is a backend server run journal record.
type ServerRun struct {
	ID         string
	Executable string
	PID        int
	Status     RunStatus
	ExitCode   *int
	// Error is the launch error of failed runs.
	Error     string
	StartedAt time.Time
	EndedAt   *time.Time
}

// ListRunsOpts configures the run journal listing.
type ListRunsOpts struct {
	// Status filters by run status. Nil returns all runs.
	Status *RunStatus
	// Limit is the maximum number of runs, newest first. 0 means no limit.
	Limit int
}

// FileEntry is a workspace file.
type FileEntry struct {
	Name string
	Size int64
}

// CollisionPolicy decides what happens when an uploaded file name already exists.
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file. This is the default.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionReject fails the upload with [ErrAlreadyExists].
	CollisionReject CollisionPolicy = "reject"
	// CollisionRename stores the upload as `name (N).ext`.
	CollisionRename CollisionPolicy = "rename"
)

// UploadResult is the result of a workspace upload.
type UploadResult struct {
	Success bool
	// Path is the absolute path of the stored file.
	Path string
}

func fromInternalServerStatus(s model.ServerStatus) ServerStatus {
	return ServerStatus{
		State:      ServerState(s.State),
		RunID:      s.RunID,
		Executable: s.Executable,
		PID:        s.PID,
		StartedAt:  s.StartedAt,
		ExitCode:   s.ExitCode,
	}
}

func fromInternalRun(r model.ServerRun) ServerRun {
	return ServerRun{
		ID:         r.ID,
		Executable: r.Executable,
		PID:        r.PID,
		Status:     RunStatus(r.Status),
		ExitCode:   r.ExitCode,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}

func fromInternalRunList(rs []model.ServerRun) []ServerRun {
	result := make([]ServerRun, len(rs))
	for i, r := range rs {
		result[i] = fromInternalRun(r)
	}
	return result
}

func fromInternalFileList(fs []model.FileEntry) []FileEntry {
	result := make([]FileEntry, len(fs))
	for i, f := range fs {
		result[i] = FileEntry{Name: f.Name, Size: f.Size}
	}
	return result
}

func toInternalStatusFilter(opts *ListRunsOpts) *model.RunStatus {
	if opts == nil || opts.Status == nil {
		return nil
	}
	s := model.RunStatus(*opts.Status)
	return &s
}
