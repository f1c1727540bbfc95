package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/protocol"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Initialize(ctx context.Context, projectID string) (string, error) {
	args := m.Called(ctx, projectID)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ExecuteCommand(ctx context.Context, projectID, command string, opts sandbox.ExecOpts) (*sandbox.ExecResult, error) {
	args := m.Called(ctx, projectID, command, opts)
	if result := args.Get(0); result != nil {
		return result.(*sandbox.ExecResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) GetHost(ctx context.Context, projectID string, port int) (string, error) {
	args := m.Called(ctx, projectID, port)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) GetSession(ctx context.Context, projectID string) (string, error) {
	args := m.Called(ctx, projectID)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) SetSession(ctx context.Context, projectID, sessionID string) error {
	args := m.Called(ctx, projectID, sessionID)
	return args.Error(0)
}

func (m *MockBackend) Generate(ctx context.Context, req protocol.GenerateRequest, events chan<- protocol.GenerationEvent) error {
	args := m.Called(ctx, req, events)
	return args.Error(0)
}

func (m *MockBackend) Teardown(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Close() error {
	args := m.Called()
	return args.Error(0)
}
