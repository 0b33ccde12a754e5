package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage"
)

// Prober checks the backend server is answering.
type Prober interface {
	Await(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool
}

// Fetcher gets the backend status payload.
type Fetcher interface {
	FetchStatus(ctx context.Context) (json.RawMessage, error)
}

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Prober     Prober
	Fetcher    Fetcher
	Repository storage.RunRepository
	HealthURL  string
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Prober == nil {
		return fmt.Errorf("prober is required")
	}

	if c.Fetcher == nil {
		return fmt.Errorf("fetcher is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.HealthURL == "" {
		return fmt.Errorf("health url is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service retrieves the backend server status.
type Service struct {
	prober    Prober
	fetcher   Fetcher
	repo      storage.RunRepository
	healthURL string
	logger    log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		prober:    cfg.Prober,
		fetcher:   cfg.Fetcher,
		repo:      cfg.Repository,
		healthURL: cfg.HealthURL,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	// RunID selects a journal run, the latest one when empty.
	RunID string
	// Attempts is how many times the backend is probed, defaults to one.
	Attempts int
	Delay    time.Duration
}

// Result is the backend status.
type Result struct {
	HealthURL string
	Ready     bool
	// Payload is the backend status response, only when ready.
	Payload json.RawMessage
	// Run is the selected journal run, nil when the journal is empty.
	Run *model.ServerRun
}

// Run probes the backend and gets its journal run.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RunID != "" && !looksLikeULID(req.RunID) {
		return nil, fmt.Errorf("invalid run id %q: %w", req.RunID, model.ErrNotValid)
	}

	attempts := req.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	run, err := s.getRun(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	res := &Result{HealthURL: s.healthURL, Run: run}

	s.logger.Debugf("probing backend at %s (%d attempts)", s.healthURL, attempts)
	res.Ready = s.prober.Await(ctx, s.healthURL, attempts, req.Delay)
	if !res.Ready {
		return res, nil
	}

	payload, err := s.fetcher.FetchStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch backend status: %w", err)
	}
	res.Payload = payload

	return res, nil
}

func (s *Service) getRun(ctx context.Context, id string) (*model.ServerRun, error) {
	if id != "" {
		run, err := s.repo.GetRun(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not get server run: %w", err)
		}
		return run, nil
	}

	runs, err := s.repo.ListRuns(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("could not list server runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	return &runs[0], nil
}

// looksLikeULID checks if a string looks like a ULID (26 characters, alphanumeric uppercase).
func looksLikeULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
