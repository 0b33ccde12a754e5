package runs

import (
	"context"
	"fmt"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage"
)

// ServiceConfig is the configuration for the runs service.
type ServiceConfig struct {
	Repository storage.RunRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists the backend server run journal.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new runs service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the runs request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show runs with this status.
	StatusFilter *model.RunStatus
	// Limit is the maximum number of runs returned, 0 means all.
	Limit int
}

// Run lists the journal runs newest first, optionally filtered by status.
func (s *Service) Run(ctx context.Context, req Request) ([]model.ServerRun, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}
	s.logger.Debugf("listing server runs with filter: %v", req.StatusFilter)

	// The limit applies after filtering so we can't delegate it on a filtered request.
	limit := req.Limit
	if req.StatusFilter != nil {
		limit = 0
	}

	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list server runs: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.ServerRun, 0, len(runs))
		for _, r := range runs {
			if r.Status == *req.StatusFilter {
				filtered = append(filtered, r)
			}
		}
		runs = filtered

		if req.Limit > 0 && len(runs) > req.Limit {
			runs = runs[:req.Limit]
		}
	}

	s.logger.Debugf("found %d server runs", len(runs))
	return runs, nil
}
