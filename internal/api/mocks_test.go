package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/werkbank/internal/lifecycle"
	"github.com/p-arndt/werkbank/internal/store"
)

// MockProjectService is a testify double for ProjectService.
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, id, name, initialInstruction, providerType string) error {
	args := m.Called(ctx, id, name, initialInstruction, providerType)
	return args.Error(0)
}

func (m *MockProjectService) Generate(ctx context.Context, id, instruction, model, providerType string) error {
	args := m.Called(ctx, id, instruction, model, providerType)
	return args.Error(0)
}

func (m *MockProjectService) CancelGeneration(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProjectService) StartPreview(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) StopPreview(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) PreviewStatus(ctx context.Context, id string) (*lifecycle.PreviewStatus, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*lifecycle.PreviewStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectService) PreviewLogs(ctx context.Context, id string, lines int) (*lifecycle.PreviewLogs, error) {
	args := m.Called(ctx, id, lines)
	if res := args.Get(0); res != nil {
		return res.(*lifecycle.PreviewLogs), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) Status(ctx context.Context, id string) (*lifecycle.ProjectStatus, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*lifecycle.ProjectStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context) ([]*store.Project, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]*store.Project), args.Error(1)
	}
	return nil, args.Error(1)
}
