// Package gatewaymock has testify mocks for the gateway collaborators.
package gatewaymock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/slok/deskshell/internal/gateway"
	"github.com/slok/deskshell/internal/model"
)

// MockWorkspaceStore is a mock of gateway.WorkspaceStore.
type MockWorkspaceStore struct {
	mock.Mock
}

var _ gateway.WorkspaceStore = &MockWorkspaceStore{}

func (m *MockWorkspaceStore) EnsureWorkspace(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceStore) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	args := m.Called(ctx, dir)
	files, _ := args.Get(0).([]model.FileEntry)
	return files, args.Error(1)
}

func (m *MockWorkspaceStore) Upload(ctx context.Context, srcPath, destDir string) (string, error) {
	args := m.Called(ctx, srcPath, destDir)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceStore) Exists(ctx context.Context, name, destDir string) bool {
	args := m.Called(ctx, name, destDir)
	return args.Bool(0)
}

func (m *MockWorkspaceStore) Read(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceStore) DataDir() string {
	args := m.Called()
	return args.String(0)
}

// MockReadinessProber is a mock of gateway.ReadinessProber.
type MockReadinessProber struct {
	mock.Mock
}

var _ gateway.ReadinessProber = &MockReadinessProber{}

func (m *MockReadinessProber) Await(ctx context.Context, url string, maxAttempts int, delay time.Duration) bool {
	args := m.Called(ctx, url, maxAttempts, delay)
	return args.Bool(0)
}

// MockFilePicker is a mock of gateway.FilePicker.
type MockFilePicker struct {
	mock.Mock
}

var _ gateway.FilePicker = &MockFilePicker{}

func (m *MockFilePicker) SelectFile(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockUIService is a mock of gateway.UIService.
type MockUIService struct {
	mock.Mock
}

var _ gateway.UIService = &MockUIService{}

func (m *MockUIService) StorageRoot(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockUIService) FetchStatus(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(json.RawMessage)
	return data, args.Error(1)
}

func (m *MockUIService) ListFiles(ctx context.Context, dir string) ([]model.FileEntry, error) {
	args := m.Called(ctx, dir)
	files, _ := args.Get(0).([]model.FileEntry)
	return files, args.Error(1)
}

func (m *MockUIService) UploadFile(ctx context.Context, req gateway.UploadRequest) (*gateway.UploadResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*gateway.UploadResult)
	return res, args.Error(1)
}

func (m *MockUIService) SelectFile(ctx context.Context) (*string, error) {
	args := m.Called(ctx)
	path, _ := args.Get(0).(*string)
	return path, args.Error(1)
}

func (m *MockUIService) DesktopPath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockUIService) DataPath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockUIService) CheckFileExists(ctx context.Context, req gateway.CheckRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockUIService) ReadFile(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}
