// Package storagemock has testify mocks for the storage repositories.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage"
)

// MockRunRepository is a mock of storage.RunRepository.
type MockRunRepository struct {
	mock.Mock
}

var _ storage.RunRepository = &MockRunRepository{}

func (m *MockRunRepository) CreateRun(ctx context.Context, run model.ServerRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, id string) (*model.ServerRun, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*model.ServerRun)
	return run, args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]model.ServerRun, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]model.ServerRun)
	return runs, args.Error(1)
}

func (m *MockRunRepository) UpdateRun(ctx context.Context, run model.ServerRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}
