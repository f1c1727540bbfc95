package lifecycle

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/protocol"
)

// MockBackend is a testify double for sandbox.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Initialize(ctx context.Context, projectID string) (string, error) {
	args := m.Called(ctx, projectID)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ExecuteCommand(ctx context.Context, projectID, command string, opts sandbox.ExecOpts) (*sandbox.ExecResult, error) {
	args := m.Called(ctx, projectID, command, opts)
	if res := args.Get(0); res != nil {
		return res.(*sandbox.ExecResult), args.Error(1)
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

// fakeAdapter is a scriptable provider.Adapter. Each ExecuteWithStreaming
// call plays the next script entry; cancellation-aware entries block until
// the context is cancelled.
type fakeAdapter struct {
	mu       sync.Mutex
	typ      string
	script   [][]provider.Event
	calls    int
	lastOpts provider.ExecuteOptions
	blocking bool
	sessions map[string]string
	cleaned  []string
}

func newFakeAdapter(typ string) *fakeAdapter {
	return &fakeAdapter{typ: typ, sessions: make(map[string]string)}
}

func (f *fakeAdapter) Type() string { return f.typ }

func (f *fakeAdapter) CheckAvailability(ctx context.Context) provider.Availability {
	return provider.Availability{Available: true, Configured: true}
}

func (f *fakeAdapter) enqueue(events ...provider.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, events)
}

func (f *fakeAdapter) ExecuteWithStreaming(ctx context.Context, opts provider.ExecuteOptions) (<-chan provider.Event, error) {
	if opts.ProjectID == "" {
		return nil, provider.ErrProjectIdentity
	}
	f.mu.Lock()
	f.lastOpts = opts
	var events []provider.Event
	if f.calls < len(f.script) {
		events = f.script[f.calls]
	}
	f.calls++
	blocking := f.blocking
	f.mu.Unlock()

	out := make(chan provider.Event, len(events)+1)
	go func() {
		defer close(out)
		for _, ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Terminal() && ev.SessionID != "" {
				f.mu.Lock()
				f.sessions[opts.ProjectID] = ev.SessionID
				f.mu.Unlock()
			}
		}
		if blocking {
			<-ctx.Done()
		}
	}()
	return out, nil
}

func (f *fakeAdapter) GetSessionID(projectID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.sessions[projectID]
	return id, ok
}

func (f *fakeAdapter) CleanupSession(ctx context.Context, projectID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, projectID)
	f.cleaned = append(f.cleaned, projectID)
}

func (f *fakeAdapter) cleanupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cleaned)
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAdapter) options() provider.ExecuteOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}
