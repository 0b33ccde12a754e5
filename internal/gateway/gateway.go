// Package gateway is the request boundary between the UI and the shell core.
//
// Every UI operation is a Service method, transports (HTTP, CLI, embedding SDK) only
// translate requests and responses.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/readiness"
)

const (
	msgNotReady    = "backend server is not ready"
	msgFetchFailed = "failed to fetch data"
)

// WorkspaceStore is the workspace used by the gateway.
type WorkspaceStore interface {
	EnsureWorkspace(ctx context.Context) (string, error)
	List(ctx context.Context, dir string) ([]model.FileEntry, error)
	Upload(ctx context.Context, srcPath, destDir string) (string, error)
	Exists(ctx context.Context, name, destDir string) bool
	Read(ctx context.Context, name string) (string, error)
	DataDir() string
}

// ReadinessProber checks the backend server is answering.
type ReadinessProber interface {
	Await(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool
}

// FilePicker asks the user for a file, an empty path means cancelled.
type FilePicker interface {
	SelectFile(ctx context.Context) (string, error)
}

// HTTPClient is the client used to get the backend status.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServiceConfig is the configuration for the gateway service.
type ServiceConfig struct {
	Workspace WorkspaceStore
	Prober    ReadinessProber
	// Picker is optional, without it file selection is not available.
	Picker     FilePicker
	HTTPClient HTTPClient
	// HealthURL is probed before fetching the status.
	HealthURL string
	// StatusURL returns the backend status payload, defaults to HealthURL.
	StatusURL     string
	ProbeAttempts int
	ProbeDelay    time.Duration
	DesktopDir    string
	Logger        log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Workspace == nil {
		return fmt.Errorf("workspace is required")
	}
	if c.Prober == nil {
		return fmt.Errorf("prober is required")
	}
	if c.HealthURL == "" {
		return fmt.Errorf("health url is required")
	}
	if c.StatusURL == "" {
		c.StatusURL = c.HealthURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: readiness.DefaultAttemptTimeout}
	}
	if c.ProbeAttempts <= 0 {
		c.ProbeAttempts = readiness.DefaultMaxAttempts
	}
	if c.ProbeDelay <= 0 {
		c.ProbeDelay = readiness.DefaultDelay
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "gateway.Service"})
	return nil
}

// Service implements the UI operations.
type Service struct {
	cfg    ServiceConfig
	logger log.Logger
}

// NewService returns a new gateway service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{cfg: cfg, logger: cfg.Logger}, nil
}

// StorageRoot returns the user data directory.
func (s *Service) StorageRoot(ctx context.Context) (string, error) {
	return s.cfg.Workspace.DataDir(), nil
}

// FetchStatus waits for the backend to be ready and returns its status payload as is.
// Backend problems are not errors, they are returned as an `{"error": "..."}` payload.
func (s *Service) FetchStatus(ctx context.Context) (json.RawMessage, error) {
	logger := s.logger.WithCtxValues(ctx)

	if !s.cfg.Prober.Await(ctx, s.cfg.HealthURL, s.cfg.ProbeAttempts, s.cfg.ProbeDelay) {
		logger.Errorf("Backend server is not ready")
		return errorPayload(msgNotReady), nil
	}

	data, err := s.getStatus(ctx)
	if err != nil {
		logger.Errorf("Could not fetch backend status: %v", err)
		return errorPayload(msgFetchFailed), nil
	}

	return data, nil
}

func (s *Service) getStatus(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.StatusURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("backend status is not JSON")
	}

	return json.RawMessage(body), nil
}

// ListFiles lists a workspace directory.
func (s *Service) ListFiles(ctx context.Context, dir string) ([]model.FileEntry, error) {
	files, err := s.cfg.Workspace.List(ctx, dir)
	if err != nil {
		s.logger.WithCtxValues(ctx).Errorf("Error listing files: %v", err)
		return nil, err
	}
	return files, nil
}

// UploadRequest is the upload-file request.
type UploadRequest struct {
	FilePath    string `json:"filePath"`
	Destination string `json:"destination"`
}

// UploadResult is the upload-file response.
type UploadResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// UploadFile copies an external file into the workspace.
func (s *Service) UploadFile(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.FilePath == "" {
		return nil, fmt.Errorf("file path is required: %w", model.ErrNotValid)
	}

	path, err := s.cfg.Workspace.Upload(ctx, req.FilePath, req.Destination)
	if err != nil {
		s.logger.WithCtxValues(ctx).Errorf("Error uploading file: %v", err)
		return nil, err
	}

	return &UploadResult{Success: true, Path: path}, nil
}

// SelectFile opens the OS file dialog. A nil path means the user cancelled.
func (s *Service) SelectFile(ctx context.Context) (*string, error) {
	if s.cfg.Picker == nil {
		return nil, fmt.Errorf("file picker is not available: %w", model.ErrNotFound)
	}

	path, err := s.cfg.Picker.SelectFile(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not select file: %w", err)
	}
	if path == "" {
		return nil, nil
	}

	return &path, nil
}

// DesktopPath returns the user's desktop directory.
func (s *Service) DesktopPath(ctx context.Context) (string, error) {
	s.logger.WithCtxValues(ctx).Debugf("Desktop path: %s", s.cfg.DesktopDir)
	return s.cfg.DesktopDir, nil
}

// DataPath returns the workspace directory, creating it if missing.
func (s *Service) DataPath(ctx context.Context) (string, error) {
	return s.cfg.Workspace.EnsureWorkspace(ctx)
}

// CheckRequest is the check-file-exists request.
type CheckRequest struct {
	FileName    string `json:"fileName"`
	Destination string `json:"destination"`
}

// CheckFileExists returns true if the file exists in the destination directory.
func (s *Service) CheckFileExists(ctx context.Context, req CheckRequest) (bool, error) {
	return s.cfg.Workspace.Exists(ctx, req.FileName, req.Destination), nil
}

// ReadFile returns the text content of a workspace file.
func (s *Service) ReadFile(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is required: %w", model.ErrNotValid)
	}

	content, err := s.cfg.Workspace.Read(ctx, name)
	if err != nil {
		s.logger.WithCtxValues(ctx).Errorf("Error reading file: %v", err)
		return "", err
	}

	return content, nil
}

func errorPayload(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return data
}
