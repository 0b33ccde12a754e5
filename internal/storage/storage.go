package storage

import (
	"context"

	"github.com/slok/deskshell/internal/model"
)

// RunRepository is the interface for the backend server run journal.
type RunRepository interface {
	CreateRun(ctx context.Context, r model.ServerRun) error
	GetRun(ctx context.Context, id string) (*model.ServerRun, error)
	// ListRuns returns the runs newest first, limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]model.ServerRun, error)
	UpdateRun(ctx context.Context, r model.ServerRun) error
}
