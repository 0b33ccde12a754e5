// Package shellapp builds the desktop shell object graph from a configuration.
//
// Both the CLI and the public SDK use it so they wire the supervisor, the
// workspace, the readiness probe and the gateway the same way.
package shellapp

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/slok/deskshell/internal/conventions"
	"github.com/slok/deskshell/internal/gateway"
	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/picker"
	"github.com/slok/deskshell/internal/readiness"
	"github.com/slok/deskshell/internal/shell"
	"github.com/slok/deskshell/internal/storage"
	"github.com/slok/deskshell/internal/storage/memory"
	"github.com/slok/deskshell/internal/storage/sqlite"
	"github.com/slok/deskshell/internal/supervisor"
	"github.com/slok/deskshell/internal/workspace"
)

const closeGrace = 3 * time.Second

// Config is the application configuration.
type Config struct {
	Shell model.ShellConfig
	// Dev resolves the backend executable from DevDir instead of ResourcesDir.
	Dev bool
	// DevDir defaults to conventions.DevBackendDir relative to the working directory.
	DevDir string
	// ResourcesDir defaults to the bundled resources next to the running binary.
	ResourcesDir string
	// DesktopDir defaults to the user desktop.
	DesktopDir string
	// DisableJournal keeps the run journal in memory.
	DisableJournal bool
	// Picker is optional, defaults to the OS file picker.
	Picker gateway.FilePicker
	// Prober is optional, defaults to an HTTP readiness probe.
	Prober gateway.ReadinessProber
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.DevDir == "" {
		c.DevDir = conventions.DevBackendDir
	}
	devDir, err := filepath.Abs(c.DevDir)
	if err != nil {
		return fmt.Errorf("could not resolve dev dir: %w", err)
	}
	c.DevDir = devDir

	if c.ResourcesDir == "" {
		c.ResourcesDir = conventions.ResourcesDir()
	}
	if c.DesktopDir == "" {
		c.DesktopDir = conventions.DesktopDir()
	}

	ws := &c.Shell.Workspace
	if ws.DataDir == "" {
		ws.DataDir = conventions.UserDataDir()
	}
	if ws.Dataset == "" {
		ws.Dataset = conventions.DefaultDatasetPath(c.ResourcesDir)
	}
	if ws.Collision == "" {
		ws.Collision = model.CollisionOverwrite
	}
	if !ws.Collision.Valid() {
		return fmt.Errorf("unknown collision policy %q: %w", ws.Collision, model.ErrNotValid)
	}

	be := &c.Shell.Backend
	if be.HealthURL == "" {
		be.HealthURL = conventions.DefaultHealthURL
	}
	if be.StatusURL == "" {
		be.StatusURL = be.HealthURL
	}

	rd := &c.Shell.Readiness
	if rd.MaxAttempts < 0 || rd.Delay < 0 || rd.AttemptTimeout < 0 {
		return fmt.Errorf("readiness values can't be negative: %w", model.ErrNotValid)
	}
	if rd.MaxAttempts == 0 {
		rd.MaxAttempts = readiness.DefaultMaxAttempts
	}
	if rd.Delay == 0 {
		rd.Delay = readiness.DefaultDelay
	}
	if rd.AttemptTimeout == 0 {
		rd.AttemptTimeout = readiness.DefaultAttemptTimeout
	}

	if c.Shell.Gateway.ListenAddr == "" {
		c.Shell.Gateway.ListenAddr = conventions.DefaultGatewayAddr
	}

	return nil
}

// App is the wired desktop shell.
type App struct {
	// Config is the configuration with the defaults applied.
	Config     Config
	Host       *shell.Host
	Gateway    *gateway.Service
	Workspace  *workspace.Store
	Supervisor *supervisor.Supervisor
	Repository storage.RunRepository
	Prober     gateway.ReadinessProber

	logger  log.Logger
	closeFn func() error
}

// New wires a new application. Nothing is started, the caller starts the host.
// Close must be called to release the journal.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Logger
	dataDir := cfg.Shell.Workspace.DataDir

	repo, closeFn, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := wire(cfg, repo)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	app.closeFn = closeFn

	logger.Debugf("Shell wired with data dir %s", dataDir)

	return app, nil
}

func newRepository(ctx context.Context, cfg Config) (storage.RunRepository, func() error, error) {
	if cfg.DisableJournal {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create memory repository: %w", err)
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: conventions.DBPath(cfg.Shell.Workspace.DataDir),
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, repo.Close, nil
}

func wire(cfg Config, repo storage.RunRepository) (*App, error) {
	logger := cfg.Logger
	sc := cfg.Shell

	store, err := workspace.NewStore(workspace.StoreConfig{
		DataDir:     sc.Workspace.DataDir,
		DatasetPath: sc.Workspace.Dataset,
		Collision:   sc.Workspace.Collision,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create workspace store: %w", err)
	}

	sup, err := supervisor.New(supervisor.Config{
		Resolver: supervisor.PlatformResolver{
			Override:     sc.Backend.Executable,
			Dev:          cfg.Dev,
			DevDir:       cfg.DevDir,
			ResourcesDir: cfg.ResourcesDir,
		},
		Args:       sc.Backend.Args,
		Env:        sc.Backend.Env,
		LockPath:   conventions.BackendLockPath(sc.Workspace.DataDir),
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create supervisor: %w", err)
	}

	prober := cfg.Prober
	if prober == nil {
		p, err := readiness.NewProbe(readiness.ProbeConfig{
			AttemptTimeout: sc.Readiness.AttemptTimeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create readiness probe: %w", err)
		}
		prober = p
	}

	filePicker := cfg.Picker
	if filePicker == nil {
		p, err := picker.NewOSPicker(picker.OSPickerConfig{
			StartDir: cfg.DesktopDir,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create file picker: %w", err)
		}
		filePicker = p
	}

	gw, err := gateway.NewService(gateway.ServiceConfig{
		Workspace:     store,
		Prober:        prober,
		Picker:        filePicker,
		HTTPClient:    &http.Client{Timeout: sc.Readiness.AttemptTimeout},
		HealthURL:     sc.Backend.HealthURL,
		StatusURL:     sc.Backend.StatusURL,
		ProbeAttempts: sc.Readiness.MaxAttempts,
		ProbeDelay:    sc.Readiness.Delay,
		DesktopDir:    cfg.DesktopDir,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create gateway service: %w", err)
	}

	host, err := shell.NewHost(shell.HostConfig{
		Supervisor: sup,
		Workspace:  store,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create shell host: %w", err)
	}

	return &App{
		Config:     cfg,
		Host:       host,
		Gateway:    gw,
		Workspace:  store,
		Supervisor: sup,
		Repository: repo,
		Prober:     prober,
		logger:     logger,
	}, nil
}

// Handler returns the HTTP transport of the gateway.
func (a *App) Handler() http.Handler {
	return gateway.NewHandler(a.Gateway, a.logger)
}

// Close releases the run journal. It doesn't terminate the backend, but when the
// backend was already terminated it waits up to closeGrace for the process to go
// away so the journal gets its exit code.
func (a *App) Close() error {
	if a.Supervisor != nil && a.Supervisor.State() == model.ServerStateTerminated {
		select {
		case <-a.Supervisor.Done():
		case <-time.After(closeGrace):
			a.logger.Warningf("Backend server still running after %s, closing the journal", closeGrace)
		}
	}

	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}
