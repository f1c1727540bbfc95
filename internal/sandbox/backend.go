// Package sandbox defines the boundary to the sandbox provisioning backend
// and its two implementations: the remote bridge client and a local Docker
// backend.
package sandbox

import (
	"context"
	"errors"

	"github.com/p-arndt/werkbank/protocol"
)

// Sentinel errors classifying backend failures.
var (
	// ErrTransport indicates the backend was unreachable or returned a
	// non-2xx response. Retriable by re-issuing the operation.
	ErrTransport = errors.New("sandbox backend transport failure")

	// ErrProvisioning indicates the backend was reachable but refused or
	// failed to create a sandbox.
	ErrProvisioning = errors.New("sandbox provisioning failure")

	// ErrSandboxNotFound indicates no sandbox exists for the project.
	ErrSandboxNotFound = errors.New("sandbox not found")

	// ErrGenerateUnsupported indicates the backend cannot drive a
	// code-generation agent.
	ErrGenerateUnsupported = errors.New("generation not supported by backend")
)

// ExecOpts controls command execution inside a sandbox.
type ExecOpts struct {
	// Background returns immediately with a reference instead of waiting.
	Background bool
	// TimeoutMs bounds foreground execution. 0 uses the backend default.
	TimeoutMs int
}

// ExecResult is the outcome of a command. A non-zero exit status inside the
// sandbox maps to Success=false with diagnostic output, never to an error
// return; errors are reserved for transport failures.
type ExecResult struct {
	Success    bool
	ExitCode   int
	Output     string
	Ref        string // background execution reference, when Background
	DurationMs int64
}

// Backend is the sandbox provisioning boundary. Implementations hold no
// per-call state for a project beyond the sandbox handle; callers receive
// results by value and must not cache sandbox state across operations.
type Backend interface {
	// Initialize provisions a sandbox for the project and returns its id.
	// Calling it for a project that already has a sandbox returns the
	// existing id.
	Initialize(ctx context.Context, projectID string) (string, error)

	// ExecuteCommand runs a shell command inside the project's sandbox.
	ExecuteCommand(ctx context.Context, projectID, command string, opts ExecOpts) (*ExecResult, error)

	// GetHost returns the public URL for a port exposed by the sandbox.
	GetHost(ctx context.Context, projectID string, port int) (string, error)

	// GetSession returns the provider session id held by the backend,
	// empty if none.
	GetSession(ctx context.Context, projectID string) (string, error)

	// SetSession installs a provider session id for resumption.
	SetSession(ctx context.Context, projectID, sessionID string) error

	// Generate streams code-generation events into the events channel in
	// the order the provider emitted them and returns when the stream
	// ends. The caller owns the channel and closes it after Generate
	// returns. A transport failure mid-stream is returned as an error
	// wrapping ErrTransport; Generate does not synthesize terminal
	// events.
	Generate(ctx context.Context, req protocol.GenerateRequest, events chan<- protocol.GenerationEvent) error

	// Teardown destroys the project's sandbox. Unknown projects are not
	// an error.
	Teardown(ctx context.Context, projectID string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
