package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/slok/deskshell/internal/app/runs"
	"github.com/slok/deskshell/internal/app/shellapp"
	"github.com/slok/deskshell/internal/gateway"
	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
)

// FilePicker asks the user for a file. An empty path means the user cancelled.
type FilePicker interface {
	SelectFile(ctx context.Context) (string, error)
}

// Config configures the SDK shell.
//
// All fields are optional and have sensible defaults. An empty Config{} uses the
// platform user data directory and the backend bundled next to the running binary.
type Config struct {
	// DataDir is the user data directory, the workspace, the journal and the backend
	// lock live inside it.
	// Default: the OS user config dir + "deskshell".
	DataDir string

	// ResourcesDir is where the bundled backend executable and default dataset live.
	// Default: the running binary directory (Contents/Resources on macOS bundles).
	ResourcesDir string

	// DesktopDir is returned by [Shell.DesktopPath].
	// Default: ~/Desktop.
	DesktopDir string

	// Dev resolves the backend from DevDir (default "src/api") instead of ResourcesDir.
	Dev    bool
	DevDir string

	// BackendExecutable overrides the resolved backend executable path.
	BackendExecutable string
	BackendArgs       []string
	// BackendEnv is added to the current process environment.
	BackendEnv map[string]string

	// Dataset is the file seeded into the workspace on first run.
	// Default: test_data.csv inside ResourcesDir.
	Dataset string

	// HealthURL is the backend readiness endpoint.
	// Default: http://127.0.0.1:8000/status.
	HealthURL string
	// StatusURL is fetched by [Shell.FetchStatus]. Default: HealthURL.
	StatusURL string

	// ProbeAttempts and ProbeDelay bound the wait for the backend to be ready.
	// Default: 30 attempts, 1s apart.
	ProbeAttempts int
	ProbeDelay    time.Duration

	// Collision is the upload name collision policy. Default: [CollisionOverwrite].
	Collision CollisionPolicy

	// DisableJournal keeps the run journal in memory instead of the SQLite database.
	DisableJournal bool

	// Picker replaces the OS file picker.
	Picker FilePicker

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

func (c Config) toShellApp() shellapp.Config {
	cfg := shellapp.Config{
		Shell: model.ShellConfig{
			Backend: model.BackendConfig{
				Executable: c.BackendExecutable,
				Args:       c.BackendArgs,
				Env:        c.BackendEnv,
				HealthURL:  c.HealthURL,
				StatusURL:  c.StatusURL,
			},
			Readiness: model.ReadinessConfig{
				MaxAttempts: c.ProbeAttempts,
				Delay:       c.ProbeDelay,
			},
			Workspace: model.WorkspaceConfig{
				DataDir:   c.DataDir,
				Dataset:   c.Dataset,
				Collision: model.CollisionPolicy(c.Collision),
			},
		},
		Dev:            c.Dev,
		DevDir:         c.DevDir,
		ResourcesDir:   c.ResourcesDir,
		DesktopDir:     c.DesktopDir,
		DisableJournal: c.DisableJournal,
		Logger:         c.Logger,
	}
	if c.Picker != nil {
		cfg.Picker = c.Picker
	}

	return cfg
}

// Shell is the main SDK entry point, it hosts the backend server and the workspace.
//
// Create a Shell with [New], start it with [Shell.Start] and release it with
// [Shell.Shutdown] and [Shell.Close]. A Shell is safe for concurrent use.
type Shell struct {
	app    *shellapp.App
	runs   *runs.Service
	logger log.Logger
}

// New creates a new shell. Nothing is started until [Shell.Start] is called.
//
// The caller must call [Shell.Close] when done to release the journal database.
// Typically used with defer:
//
//	sh, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer sh.Close()
func New(ctx context.Context, cfg Config) (*Shell, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app, err := shellapp.New(ctx, cfg.toShellApp())
	if err != nil {
		return nil, mapError(err)
	}

	runsSvc, err := runs.NewService(runs.ServiceConfig{
		Repository: app.Repository,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("could not create runs service: %w", err)
	}

	return &Shell{app: app, runs: runsSvc, logger: cfg.Logger}, nil
}

// Start prepares the workspace, seeds it with the default dataset on first run and
// launches the backend server. It returns once the process is launched, not when
// it's ready.
//
// Only workspace preparation errors are returned, backend launch failures are
// logged and visible in [Shell.Status].
func (s *Shell) Start(ctx context.Context) error {
	return mapError(s.app.Host.Start(ctx))
}

// Shutdown terminates the backend server. It can be called multiple times and
// from multiple goroutines, the backend is terminated once.
func (s *Shell) Shutdown() {
	s.app.Host.Shutdown()
}

// Done is closed when the backend process finished or failed to launch.
func (s *Shell) Done() <-chan struct{} {
	return s.app.Host.Done()
}

// Status returns the backend server status.
func (s *Shell) Status() ServerStatus {
	return fromInternalServerStatus(s.app.Host.Status())
}

// Handler returns the UI gateway HTTP handler, serving every operation as
// `POST /ipc/<operation>` with JSON bodies.
func (s *Shell) Handler() http.Handler {
	return s.app.Handler()
}

// Close releases resources held by the shell. It doesn't terminate the backend,
// call [Shell.Shutdown] first.
func (s *Shell) Close() error {
	return s.app.Close()
}

// Runs lists the backend server run journal, newest first.
func (s *Shell) Runs(ctx context.Context, opts *ListRunsOpts) ([]ServerRun, error) {
	req := runs.Request{StatusFilter: toInternalStatusFilter(opts)}
	if opts != nil {
		req.Limit = opts.Limit
	}

	rs, err := s.runs.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalRunList(rs), nil
}

// StorageRoot returns the user data directory.
func (s *Shell) StorageRoot(ctx context.Context) (string, error) {
	p, err := s.app.Gateway.StorageRoot(ctx)
	return p, mapError(err)
}

// FetchStatus waits for the backend to be ready and returns its status payload.
// When the backend is not ready or the request fails the payload is an
// `{"error": "..."}` object, not an error.
func (s *Shell) FetchStatus(ctx context.Context) (json.RawMessage, error) {
	data, err := s.app.Gateway.FetchStatus(ctx)
	return data, mapError(err)
}

// ListFiles lists a workspace directory, relative to the workspace root ("" is the root).
func (s *Shell) ListFiles(ctx context.Context, dir string) ([]FileEntry, error) {
	files, err := s.app.Gateway.ListFiles(ctx, dir)
	if err != nil {
		return nil, mapError(err)
	}
	return fromInternalFileList(files), nil
}

// UploadFile copies a local file into a workspace directory.
func (s *Shell) UploadFile(ctx context.Context, filePath, destination string) (*UploadResult, error) {
	res, err := s.app.Gateway.UploadFile(ctx, gateway.UploadRequest{FilePath: filePath, Destination: destination})
	if err != nil {
		return nil, mapError(err)
	}
	return &UploadResult{Success: res.Success, Path: res.Path}, nil
}

// SelectFile opens the file picker. A nil path means the user cancelled.
func (s *Shell) SelectFile(ctx context.Context) (*string, error) {
	p, err := s.app.Gateway.SelectFile(ctx)
	return p, mapError(err)
}

// DesktopPath returns the user desktop directory.
func (s *Shell) DesktopPath(ctx context.Context) (string, error) {
	p, err := s.app.Gateway.DesktopPath(ctx)
	return p, mapError(err)
}

// DataPath returns the workspace directory, creating it if missing.
func (s *Shell) DataPath(ctx context.Context) (string, error) {
	p, err := s.app.Gateway.DataPath(ctx)
	return p, mapError(err)
}

// CheckFileExists checks if a file exists in a workspace directory.
func (s *Shell) CheckFileExists(ctx context.Context, fileName, destination string) (bool, error) {
	ok, err := s.app.Gateway.CheckFileExists(ctx, gateway.CheckRequest{FileName: fileName, Destination: destination})
	return ok, mapError(err)
}

// ReadFile returns the content of a workspace file.
func (s *Shell) ReadFile(ctx context.Context, fileName string) (string, error) {
	c, err := s.app.Gateway.ReadFile(ctx, fileName)
	return c, mapError(err)
}
