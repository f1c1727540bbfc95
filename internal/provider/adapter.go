package provider

import (
	"context"
	"errors"
)

// ErrProjectIdentity indicates the adapter could not resolve which project
// a request belongs to. No partial work is attempted.
var ErrProjectIdentity = errors.New("unable to resolve project identity")

// Availability is the result of a non-mutating health probe. Probes never
// fail with an error; network trouble is reported as Available=false.
type Availability struct {
	Available  bool   `json:"available"`
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

// ExecuteOptions parameterize one streaming generation run. The project id
// is always passed explicitly; adapters never derive it from paths or
// session state.
type ExecuteOptions struct {
	ProjectID       string
	Instruction     string
	ResumeSessionID string
	Model           string
	IsInitial       bool
}

// Adapter is the capability contract every generation backend satisfies.
type Adapter interface {
	// Type names the provider family ("claude", ...).
	Type() string

	// CheckAvailability probes the provider without mutating anything.
	CheckAvailability(ctx context.Context) Availability

	// ExecuteWithStreaming starts a generation run and returns its event
	// stream. The stream is finite, consumed by exactly one caller, and
	// not restartable; it ends with exactly one terminal event even when
	// the underlying transport breaks mid-stream. The returned error is
	// non-nil only when the run could not be started at all.
	ExecuteWithStreaming(ctx context.Context, opts ExecuteOptions) (<-chan Event, error)

	// GetSessionID returns the last known provider session id for the
	// project, if any.
	GetSessionID(projectID string) (string, bool)

	// CleanupSession invalidates local session state for the project and
	// tears down remote resources best-effort. Idempotent; remote
	// failures are logged, never returned, so a stuck remote resource
	// cannot block local cleanup.
	CleanupSession(ctx context.Context, projectID string)
}
