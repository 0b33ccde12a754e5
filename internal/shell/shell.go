// Package shell sequences the desktop shell lifecycle: workspace preparation, backend
// start and backend termination on exit.
package shell

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
)

// Supervisor owns the backend server process.
type Supervisor interface {
	Start(ctx context.Context) error
	Terminate()
	Status() model.ServerStatus
	Done() <-chan struct{}
}

// Workspace prepares the workspace directory.
type Workspace interface {
	EnsureWorkspace(ctx context.Context) (string, error)
	SeedDefaultDatasetOnce(ctx context.Context) (model.SeedResult, error)
}

// HostConfig is the configuration for the shell host.
type HostConfig struct {
	Supervisor Supervisor
	Workspace  Workspace
	Logger     log.Logger
}

func (c *HostConfig) defaults() error {
	if c.Supervisor == nil {
		return fmt.Errorf("supervisor is required")
	}
	if c.Workspace == nil {
		return fmt.Errorf("workspace is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "shell.Host"})
	return nil
}

// Host is the application host, it owns the supervisor for the whole run.
type Host struct {
	sup    Supervisor
	ws     Workspace
	logger log.Logger

	shutdownOnce sync.Once
}

// NewHost returns a new shell host.
func NewHost(cfg HostConfig) (*Host, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Host{
		sup:    cfg.Supervisor,
		ws:     cfg.Workspace,
		logger: cfg.Logger,
	}, nil
}

// Start prepares the workspace and starts the backend server, in that order.
//
// Only a workspace that can't be created fails the start. Seeding and backend start
// failures are logged, the UI finds out through the readiness probe.
func (h *Host) Start(ctx context.Context) error {
	root, err := h.ws.EnsureWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("could not prepare workspace: %w", err)
	}
	h.logger.Debugf("Workspace ready at %s", root)

	res, err := h.ws.SeedDefaultDatasetOnce(ctx)
	if err != nil {
		h.logger.Errorf("Could not seed default dataset: %v", err)
	} else {
		h.logger.Debugf("Default dataset seed: %s", res)
	}

	if err := h.sup.Start(ctx); err != nil {
		h.logger.Errorf("Backend server not started: %v", err)
	}

	return nil
}

// Shutdown terminates the backend server. Only the first call has effect.
func (h *Host) Shutdown() {
	h.shutdownOnce.Do(func() {
		h.logger.Infof("Shutting down")
		h.sup.Terminate()
	})
}

// Done is closed once the backend server is gone.
func (h *Host) Done() <-chan struct{} {
	return h.sup.Done()
}

// Status returns the backend server status.
func (h *Host) Status() model.ServerStatus {
	return h.sup.Status()
}
