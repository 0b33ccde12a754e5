// Package supervisor owns the lifecycle of the single backend server process.
//
// The supervisor only launches and terminates the process, it never checks if the
// server is able to answer requests, that is the readiness probe job.
package supervisor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage"
	"github.com/slok/deskshell/internal/utils/env"
)

// waitDelay bounds how long we wait for the output pipes after the process exits.
const waitDelay = 2 * time.Second

// Config is the configuration for the supervisor.
type Config struct {
	// Resolver resolves the backend executable path. Required.
	Resolver ExecutableResolver
	// Args are passed to the backend executable.
	Args []string
	// Env is added to the current process environment.
	Env map[string]string
	// Dir is the backend working directory, defaults to the current one.
	Dir string
	// LockPath is the file lock held while the process is owned, so two shells
	// sharing a data directory don't spawn two backends. Empty disables it.
	LockPath string
	// Repository is optional, when set every run is recorded in the journal.
	Repository storage.RunRepository
	Logger     log.Logger
}

func (c *Config) defaults() error {
	if c.Resolver == nil {
		return fmt.Errorf("executable resolver is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "supervisor.Supervisor"})
	return nil
}

// Supervisor starts, owns and stops exactly one backend server process.
// It is safe for concurrent use.
type Supervisor struct {
	resolver ExecutableResolver
	args     []string
	env      map[string]string
	dir      string
	lockPath string
	repo     storage.RunRepository
	logger   log.Logger

	mu         sync.Mutex
	state      model.ServerState
	cmd        *exec.Cmd
	pid        int
	runID      string
	executable string
	startedAt  *time.Time
	exitCode   *int
	done       chan struct{}
	// exited is closed as soon as the process is reaped, before the state is updated.
	exited chan struct{}
}

// New returns a new supervisor in the not started state.
func New(cfg Config) (*Supervisor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Supervisor{
		resolver: cfg.Resolver,
		args:     append([]string(nil), cfg.Args...),
		env:      maps.Clone(cfg.Env),
		dir:      cfg.Dir,
		lockPath: cfg.LockPath,
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		state:    model.ServerStateNotStarted,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}, nil
}

// Start launches the backend server process. Only the first call has effect, any
// later call is a logged no-op regardless of the outcome of the first one.
//
// A missing executable returns an error wrapping model.ErrExecutableNotFound and
// leaves the supervisor failed, it's never retried.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.ServerStateNotStarted {
		s.logger.Infof("Backend server already started or starting (state: %s)", s.state)
		return nil
	}

	s.state = model.ServerStateStarting
	s.runID = ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	logger := s.logger.WithValues(log.Kv{"run": s.runID})

	path, err := s.resolver.ResolveExecutable()
	if err != nil {
		return s.fail(ctx, fmt.Errorf("could not resolve backend executable: %w", err))
	}
	s.executable = path

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.fail(ctx, fmt.Errorf("backend executable not found at %s: %w", path, model.ErrExecutableNotFound))
		}
		return s.fail(ctx, fmt.Errorf("could not check backend executable: %w", err))
	}
	if st.IsDir() {
		return s.fail(ctx, fmt.Errorf("backend executable %s is a directory: %w", path, model.ErrExecutableNotFound))
	}

	var lock *flock.Flock
	if s.lockPath != "" {
		lock = flock.New(s.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return s.fail(ctx, fmt.Errorf("could not acquire backend lock: %w", err))
		}
		if !ok {
			return s.fail(ctx, fmt.Errorf("backend server is owned by another process (lock %s): %w", s.lockPath, model.ErrAlreadyExists))
		}
	}

	stdout := newLineWriter(logger.WithValues(log.Kv{"stream": "stdout"}).Infof)
	stderr := newLineWriter(logger.WithValues(log.Kv{"stream": "stderr"}).Warningf)

	// The process must outlive the start request, so no context bound command.
	cmd := exec.Command(path, s.args...)
	cmd.Dir = s.dir
	cmd.Env = env.Environ(os.Environ(), s.env)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = sysProcAttr()
	cmd.WaitDelay = waitDelay

	logger.Infof("Starting backend server: %s", path)
	if err := cmd.Start(); err != nil {
		unlock(lock, logger)
		return s.fail(ctx, fmt.Errorf("could not spawn backend server: %w", err))
	}

	now := time.Now().UTC()
	s.cmd = cmd
	s.pid = cmd.Process.Pid
	s.startedAt = &now
	s.state = model.ServerStateRunning

	s.journalCreate(ctx, model.ServerRun{
		ID:         s.runID,
		Executable: path,
		PID:        s.pid,
		Status:     model.RunStatusRunning,
		StartedAt:  now,
	})

	go s.wait(cmd, lock, stdout, stderr)

	logger.Infof("Backend server started (PID: %d)", s.pid)
	return nil
}

// fail moves the supervisor to the failed state. Must be called with the mutex held.
func (s *Supervisor) fail(ctx context.Context, err error) error {
	s.state = model.ServerStateFailed
	s.logger.WithValues(log.Kv{"run": s.runID}).Errorf("Backend server start failed: %v", err)

	now := time.Now().UTC()
	s.journalCreate(ctx, model.ServerRun{
		ID:         s.runID,
		Executable: s.executable,
		Status:     model.RunStatusFailed,
		Error:      err.Error(),
		StartedAt:  now,
		EndedAt:    &now,
	})
	close(s.done)

	return err
}

// wait blocks until the process exits and updates the state accordingly.
func (s *Supervisor) wait(cmd *exec.Cmd, lock *flock.Flock, stdout, stderr *lineWriter) {
	waitErr := cmd.Wait()
	close(s.exited)
	stdout.Flush()
	stderr.Flush()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	s.mu.Lock()
	logger := s.logger.WithValues(log.Kv{"run": s.runID})
	terminated := s.state == model.ServerStateTerminated
	s.state = model.ServerStateTerminated
	s.cmd = nil
	s.pid = 0
	if !terminated {
		s.exitCode = &exitCode
	}
	runID := s.runID
	unlock(lock, logger)
	s.mu.Unlock()
	defer close(s.done)

	if terminated {
		// Terminate already recorded the end of the run, only the exit code is new.
		logger.Infof("Backend server terminated (exit code: %d)", exitCode)
		s.journalUpdate(runID, func(r *model.ServerRun) {
			r.ExitCode = &exitCode
		})
		return
	}

	logger.Warningf("Backend server exited on its own (exit code: %d): %v", exitCode, waitErr)
	now := time.Now().UTC()
	s.journalUpdate(runID, func(r *model.ServerRun) {
		r.Status = model.RunStatusExited
		r.ExitCode = &exitCode
		r.EndedAt = &now
	})
}

// Terminate sends a termination signal to the owned process, if any, and records
// the end of the run in the journal. It doesn't wait for the process to exit.
// Calling it without a running process is a no-op, errors are logged and swallowed
// because it's used while the application is exiting.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminate()
}

// terminate must be called with the mutex held.
func (s *Supervisor) terminate() {
	if s.state != model.ServerStateRunning || s.cmd == nil {
		s.logger.Debugf("No backend server to terminate (state: %s)", s.state)
		return
	}

	logger := s.logger.WithValues(log.Kv{"run": s.runID})

	// The process exited on its own and the exit watcher is about to record it.
	select {
	case <-s.exited:
		logger.Debugf("Backend server already exited, nothing to terminate")
		return
	default:
	}

	logger.Infof("Terminating backend server (PID: %d)", s.pid)
	if err := terminateProcess(s.cmd.Process); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			logger.Debugf("Backend server already exited, nothing to terminate")
			return
		}
		logger.Warningf("Could not terminate backend server: %v", err)
	}

	s.state = model.ServerStateTerminated
	s.cmd = nil
	s.pid = 0

	now := time.Now().UTC()
	s.journalUpdate(s.runID, func(r *model.ServerRun) {
		r.Status = model.RunStatusTerminated
		r.EndedAt = &now
	})
}

// State returns the current lifecycle state.
func (s *Supervisor) State() model.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot of the supervised server.
func (s *Supervisor) Status() model.ServerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.ServerStatus{
		State:      s.state,
		RunID:      s.runID,
		Executable: s.executable,
		PID:        s.pid,
	}
	if s.startedAt != nil {
		t := *s.startedAt
		st.StartedAt = &t
	}
	if s.exitCode != nil {
		c := *s.exitCode
		st.ExitCode = &c
	}
	return st
}

// Done is closed once there is no process anymore: the process exited or the start failed.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) journalCreate(ctx context.Context, r model.ServerRun) {
	if s.repo == nil {
		return
	}
	// The journal is not part of the start request, don't let its cancellation lose the record.
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.CreateRun(ctx, r); err != nil {
		s.logger.Warningf("Could not record server run %s: %v", r.ID, err)
	}
}

func (s *Supervisor) journalUpdate(id string, mutate func(r *model.ServerRun)) {
	if s.repo == nil {
		return
	}
	ctx := context.Background()
	r, err := s.repo.GetRun(ctx, id)
	if err != nil {
		s.logger.Warningf("Could not get server run %s: %v", id, err)
		return
	}
	mutate(r)
	if err := s.repo.UpdateRun(ctx, *r); err != nil {
		s.logger.Warningf("Could not update server run %s: %v", id, err)
	}
}

func unlock(lock *flock.Flock, logger log.Logger) {
	if lock == nil {
		return
	}
	if err := lock.Unlock(); err != nil {
		logger.Warningf("Could not release backend lock: %v", err)
	}
}
