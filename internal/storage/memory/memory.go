package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.RunRepository.
// Used when the journal is disabled and in tests.
type Repository struct {
	runs   map[string]model.ServerRun
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:   make(map[string]model.ServerRun),
		logger: cfg.Logger,
	}, nil
}

// CreateRun stores a new server run.
func (r *Repository) CreateRun(ctx context.Context, run model.ServerRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrAlreadyExists)
	}
	r.runs[run.ID] = copyRun(run)
	r.logger.Debugf("Created server run in journal: %s", run.ID)

	return nil
}

// GetRun retrieves a server run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.ServerRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}
	run = copyRun(run)

	return &run, nil
}

// ListRuns returns the runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.ServerRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.ServerRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, copyRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// UpdateRun updates an existing server run.
func (r *Repository) UpdateRun(ctx context.Context, run model.ServerRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}
	r.runs[run.ID] = copyRun(run)
	r.logger.Debugf("Updated server run in journal: %s (%s)", run.ID, run.Status)

	return nil
}

// copyRun makes sure callers can't mutate the stored pointers.
func copyRun(run model.ServerRun) model.ServerRun {
	if run.ExitCode != nil {
		code := *run.ExitCode
		run.ExitCode = &code
	}
	if run.EndedAt != nil {
		t := *run.EndedAt
		run.EndedAt = &t
	}
	return run
}
