// Package lifecycle owns the sandbox state machine per project. The Manager
// is the sole writer of sandbox state: it sequences provisioning, environment
// bootstrap, streamed generation and teardown, pushing progress through the
// relay so accepted requests can return immediately.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/relay"
	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/internal/store"
	"github.com/p-arndt/werkbank/protocol"
)

// Options configure the Manager.
type Options struct {
	ProjectsRoot     string
	PreviewPort      int
	CommandTimeoutMs int
	DefaultProvider  string
}

// bootstrapStep is one environment setup command. Best-effort steps may
// fail without aborting the sequence.
type bootstrapStep struct {
	name       string
	command    string
	bestEffort bool
}

// bootstrapSteps bring a fresh sandbox to a runnable project. The watch
// limit tweak is unsupported on some kernels and must not block setup.
var bootstrapSteps = []bootstrapStep{
	{
		name:    "scaffold project",
		command: `test -f package.json || npx --yes create-next-app@latest . --ts --eslint --app --src-dir --import-alias "@/*" --use-npm --no-tailwind`,
	},
	{
		name:    "install dependencies",
		command: "npm install --no-audit --no-fund",
	},
	{
		name:    "init version control",
		command: "test -d .git || (git init -q && git add -A && git commit -qm 'initial scaffold')",
	},
	{
		name:       "raise file watch limit",
		command:    "sysctl -w fs.inotify.max_user_watches=524288",
		bestEffort: true,
	},
}

// projectState tracks the in-process lifecycle of one project. The op mutex
// is the project's serialization token: held for the whole duration of a
// lifecycle operation including its background part.
type projectState struct {
	op        sync.Mutex
	state     State
	cancelGen context.CancelFunc
}

// Manager orchestrates sandbox lifecycles. All state transitions go through
// transition under the projects mutex; all mutating operations additionally
// hold the per-project op lock.
type Manager struct {
	backend   sandbox.Backend
	providers *provider.Registry
	store     *store.Store
	relay     *relay.Relay
	opts      Options
	logger    *slog.Logger

	mu       sync.Mutex
	projects map[string]*projectState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(backend sandbox.Backend, providers *provider.Registry, st *store.Store, rl *relay.Relay, opts Options, logger *slog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		backend:   backend,
		providers: providers,
		store:     st,
		relay:     rl,
		opts:      opts,
		logger:    logger,
		projects:  make(map[string]*projectState),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close cancels background work and waits for in-flight operations.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// proj returns the tracked state for id, seeding it from the persisted
// record on first access so sandboxes survive a daemon restart.
func (m *Manager) proj(id string, persisted *store.Project) *projectState {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.projects[id]
	if !ok {
		ps = &projectState{state: seedState(persisted)}
		m.projects[id] = ps
	}
	return ps
}

func seedState(p *store.Project) State {
	if p == nil {
		return StateUninitialized
	}
	switch {
	case p.SandboxID != "" && p.Status == "error":
		return StateError
	case p.SandboxID != "":
		return StateReady
	case p.Status == "error":
		// Failed before a handle existed; a fresh create may retry.
		return StateUninitialized
	default:
		return StateUninitialized
	}
}

// transition moves the project to next, enforcing the state table.
func (m *Manager) transition(id string, ps *projectState, next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ps.state.canTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, ps.state, next)
	}
	m.logger.Info("lifecycle transition", "project_id", id, "from", ps.state, "to", next)
	ps.state = next
	return nil
}

func (m *Manager) stateOf(ps *projectState) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ps.state
}

// acquire takes the project's operation lock without blocking.
func (m *Manager) acquire(ps *projectState) error {
	if !ps.op.TryLock() {
		return ErrBusy
	}
	return nil
}

// publish sends a project_status relay message.
func (m *Manager) publish(id, status, message, hostURL string) {
	m.relay.Publish(id, relay.ProjectStatus(status, message, hostURL))
}

// Create registers the project and asynchronously provisions its sandbox.
// A project whose sandbox is already live is acknowledged without creating
// a second handle. When initialInstruction is non-empty the first
// generation run starts right after bootstrap.
func (m *Manager) Create(ctx context.Context, id, name, initialInstruction, providerType string) error {
	if id == "" {
		return fmt.Errorf("%w: empty project id", provider.ErrProjectIdentity)
	}
	if providerType == "" {
		providerType = m.opts.DefaultProvider
	}
	if _, err := m.providers.Get(providerType); err != nil {
		return err
	}

	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	ps := m.proj(id, persisted)

	if err := m.acquire(ps); err != nil {
		return err
	}

	// Re-read under the lock; another create may have provisioned in the
	// window since the first load.
	persisted, err = m.store.GetProject(id)
	if err != nil {
		ps.op.Unlock()
		return fmt.Errorf("load project: %w", err)
	}

	// Idempotency: a live handle is reused, never duplicated.
	if m.stateOf(ps).live() && persisted != nil && persisted.SandboxID != "" {
		ps.op.Unlock()
		m.logger.Info("create reuses live sandbox", "project_id", id, "sandbox_id", persisted.SandboxID)
		m.publish(id, "active", "sandbox already running", persisted.HostURL)
		return nil
	}
	// Error is re-creatable only while no handle exists; an errored
	// sandbox with a handle needs a teardown first.
	st := m.stateOf(ps)
	retriableError := st == StateError && (persisted == nil || persisted.SandboxID == "")
	if st != StateUninitialized && st != StateTerminated && !retriableError {
		ps.op.Unlock()
		return fmt.Errorf("%w: create in state %s", ErrInvalidState, st)
	}

	if persisted == nil {
		now := time.Now().UTC()
		persisted = &store.Project{
			ID:           id,
			Name:         name,
			Status:       "initializing",
			Provider:     providerType,
			CreatedAt:    now,
			LastActivity: now,
		}
		if err := m.store.CreateProject(persisted); err != nil {
			ps.op.Unlock()
			return fmt.Errorf("create project record: %w", err)
		}
	}

	if err := m.transition(id, ps, StateProvisioning); err != nil {
		ps.op.Unlock()
		return err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ps.op.Unlock()
		m.provision(ps, id, name, initialInstruction, providerType)
	}()
	return nil
}

// provision runs the provisioning and bootstrap sequence in the background,
// already holding the project's op lock. Exactly one terminal status is
// published on every path.
func (m *Manager) provision(ps *projectState, id, name, initialInstruction, providerType string) {
	m.publish(id, "provisioning", "creating sandbox", "")

	sandboxID, err := m.backend.Initialize(m.ctx, id)
	if err != nil {
		m.failProject(ps, id, fmt.Errorf("provision sandbox: %w", err))
		return
	}

	hostURL, err := m.backend.GetHost(m.ctx, id, m.opts.PreviewPort)
	if err != nil {
		// The preview URL is resolvable later; provisioning proceeds.
		m.logger.Warn("host url not resolvable yet", "project_id", id, "error", err)
		hostURL = ""
	}

	if err := m.store.SetSandboxHandle(id, sandboxID, hostURL); err != nil {
		m.failProject(ps, id, fmt.Errorf("record sandbox handle: %w", err))
		return
	}
	if err := writeMetadata(m.opts.ProjectsRoot, protocol.SandboxMetadata{
		ProjectID: id,
		Name:      name,
		SandboxID: sandboxID,
		HostURL:   hostURL,
		Status:    "active",
		CreatedAt: time.Now().UTC(),
		Type:      "sandbox",
	}); err != nil {
		m.logger.Error("metadata write failed", "project_id", id, "error", err)
	}

	if err := m.transition(id, ps, StateBootstrapping); err != nil {
		m.failProject(ps, id, err)
		return
	}
	m.publish(id, "bootstrapping", "setting up environment", hostURL)

	if err := m.bootstrap(id); err != nil {
		m.failProject(ps, id, fmt.Errorf("bootstrap: %w", err))
		return
	}

	if err := m.transition(id, ps, StateReady); err != nil {
		m.failProject(ps, id, err)
		return
	}
	if err := m.store.UpdateProjectStatus(id, "active"); err != nil {
		m.logger.Error("status update failed", "project_id", id, "error", err)
	}
	m.publish(id, "active", "sandbox ready", hostURL)

	if initialInstruction != "" {
		m.runGenerationLocked(ps, id, initialInstruction, "", providerType, true)
	}
}

// bootstrap executes the environment setup sequence. Any non-best-effort
// step with success=false aborts the sequence.
func (m *Manager) bootstrap(id string) error {
	for _, step := range bootstrapSteps {
		res, err := m.backend.ExecuteCommand(m.ctx, id, step.command, sandbox.ExecOpts{
			TimeoutMs: m.opts.CommandTimeoutMs,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if !res.Success {
			if step.bestEffort {
				m.logger.Warn("best-effort step failed", "project_id", id, "step", step.name, "output", res.Output)
				continue
			}
			return &CommandError{Step: step.name, Output: res.Output}
		}
		m.logger.Debug("bootstrap step done", "project_id", id, "step", step.name, "duration_ms", res.DurationMs)
	}
	return nil
}

// failProject moves the project to error, records the status and publishes
// the terminal error message. The handle, if any, is preserved for
// inspection; a handleless failure leaves nothing behind.
func (m *Manager) failProject(ps *projectState, id string, cause error) {
	m.logger.Error("lifecycle operation failed", "project_id", id, "error", cause)

	m.mu.Lock()
	ps.state = StateError
	m.mu.Unlock()

	if err := m.store.UpdateProjectStatus(id, "error"); err != nil {
		m.logger.Error("status update failed", "project_id", id, "error", err)
	}
	m.publish(id, "error", cause.Error(), "")
}

// Generate starts a streamed generation run for the project. Returns
// ErrBusy while another operation, including a running generation, holds
// the project.
func (m *Manager) Generate(ctx context.Context, id, instruction, model, providerType string) error {
	if instruction == "" {
		return errors.New("instruction must not be empty")
	}
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}
	if providerType == "" {
		providerType = persisted.Provider
	}
	ps := m.proj(id, persisted)

	if err := m.acquire(ps); err != nil {
		return err
	}
	if st := m.stateOf(ps); st != StateReady {
		ps.op.Unlock()
		return fmt.Errorf("%w: generate in state %s", ErrInvalidState, st)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ps.op.Unlock()
		m.runGenerationLocked(ps, id, instruction, model, providerType, false)
	}()
	return nil
}

// runGenerationLocked drives one generation run while the caller holds the
// project's op lock. It consumes the adapter stream to completion, relays
// every event in order and settles the state machine on the terminal event.
func (m *Manager) runGenerationLocked(ps *projectState, id, instruction, model, providerType string, isInitial bool) {
	adapter, err := m.providers.Get(providerType)
	if err != nil {
		m.failProject(ps, id, err)
		return
	}

	if err := m.transition(id, ps, StateGenerating); err != nil {
		m.failProject(ps, id, err)
		return
	}

	genCtx, cancelGen := context.WithCancel(m.ctx)
	defer cancelGen()
	m.mu.Lock()
	ps.cancelGen = cancelGen
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		ps.cancelGen = nil
		m.mu.Unlock()
	}()

	resume := ""
	if p, err := m.store.GetProject(id); err == nil && p != nil {
		resume = p.SessionID
	}

	m.publish(id, "generating", "generation started", "")

	stream, err := adapter.ExecuteWithStreaming(genCtx, provider.ExecuteOptions{
		ProjectID:       id,
		Instruction:     instruction,
		ResumeSessionID: resume,
		Model:           model,
		IsInitial:       isInitial,
	})
	if err != nil {
		m.failProject(ps, id, fmt.Errorf("start generation: %w", err))
		return
	}

	var terminal *provider.Event
	for ev := range stream {
		m.relay.Publish(id, relay.GenerationEvent(ev))
		if ev.Terminal() {
			terminal = &ev
		}
	}

	cancelled := terminal == nil && genCtx.Err() != nil

	switch {
	case terminal != nil && terminal.Kind == provider.KindResult:
		if terminal.SessionID != "" {
			if err := m.store.SetProviderSession(id, terminal.SessionID); err != nil {
				m.logger.Error("session persist failed", "project_id", id, "error", err)
			}
		}
		if err := m.store.UpdateProjectActivity(id); err != nil {
			m.logger.Error("activity update failed", "project_id", id, "error", err)
		}
		if err := m.transition(id, ps, StateReady); err != nil {
			m.logger.Error("post-generation transition failed", "project_id", id, "error", err)
		}
		if err := m.store.UpdateProjectStatus(id, "active"); err != nil {
			m.logger.Error("status update failed", "project_id", id, "error", err)
		}
		m.publish(id, "active", "generation complete", "")

	case cancelled:
		if err := m.transition(id, ps, StateReady); err != nil {
			m.logger.Error("post-cancel transition failed", "project_id", id, "error", err)
		}
		m.publish(id, "active", "generation cancelled", "")

	default:
		// Terminal error event, or the adapter contract was broken and
		// the stream ended silently. The handle stays for a retry after
		// teardown.
		msg := "generation failed"
		if terminal != nil && terminal.Content != "" {
			msg = terminal.Content
		}
		m.failProject(ps, id, errors.New(msg))
	}
}

// CancelGeneration requests early termination of the in-flight generation.
// The running stream observes the cancelled context, settles the state and
// releases the project.
func (m *Manager) CancelGeneration(id string) error {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}
	ps := m.proj(id, persisted)

	m.mu.Lock()
	cancel := ps.cancelGen
	state := ps.state
	m.mu.Unlock()

	if state != StateGenerating || cancel == nil {
		return fmt.Errorf("%w: cancel in state %s", ErrInvalidState, state)
	}
	cancel()
	return nil
}

// StartPreview launches the dev server inside the sandbox and publishes the
// resolved host URL. Accepted asynchronously.
func (m *Manager) StartPreview(ctx context.Context, id string) error {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}
	ps := m.proj(id, persisted)

	if err := m.acquire(ps); err != nil {
		return err
	}
	if st := m.stateOf(ps); st != StateReady {
		ps.op.Unlock()
		return fmt.Errorf("%w: preview in state %s", ErrInvalidState, st)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ps.op.Unlock()

		cmd := fmt.Sprintf("npm run dev > %s 2>&1", previewLogFile)
		res, err := m.backend.ExecuteCommand(m.ctx, id, cmd, sandbox.ExecOpts{Background: true})
		if err != nil {
			m.publish(id, "error", fmt.Sprintf("start preview: %v", err), "")
			return
		}
		if !res.Success {
			m.publish(id, "error", "start preview: "+res.Output, "")
			return
		}

		hostURL, err := m.backend.GetHost(m.ctx, id, m.opts.PreviewPort)
		if err != nil {
			m.publish(id, "error", fmt.Sprintf("resolve preview host: %v", err), "")
			return
		}
		if err := m.store.SetSandboxHandle(id, persisted.SandboxID, hostURL); err != nil {
			m.logger.Error("host url persist failed", "project_id", id, "error", err)
		}
		m.publish(id, "active", "preview running", hostURL)
	}()
	return nil
}

// StopPreview stops the dev server. Synchronous and best-effort; a preview
// that is not running is not an error.
func (m *Manager) StopPreview(ctx context.Context, id string) error {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}

	res, err := m.backend.ExecuteCommand(ctx, id, `pkill -f "next dev" || true`, sandbox.ExecOpts{})
	if err != nil {
		return fmt.Errorf("stop preview: %w", err)
	}
	if !res.Success {
		m.logger.Warn("stop preview reported failure", "project_id", id, "output", res.Output)
	}
	m.publish(id, "active", "preview stopped", "")
	return nil
}

// PreviewStatus reports whether the dev server is running and where.
type PreviewStatus struct {
	Running bool   `json:"running"`
	HostURL string `json:"host_url,omitempty"`
}

func (m *Manager) PreviewStatus(ctx context.Context, id string) (*PreviewStatus, error) {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return nil, ErrNotFound
	}
	if persisted.SandboxID == "" {
		return &PreviewStatus{}, nil
	}

	res, err := m.backend.ExecuteCommand(ctx, id, `pgrep -f "next dev" >/dev/null`, sandbox.ExecOpts{})
	if err != nil {
		return nil, fmt.Errorf("probe preview: %w", err)
	}
	return &PreviewStatus{Running: res.Success, HostURL: persisted.HostURL}, nil
}

// previewLogFile captures the dev server's output inside the sandbox so it
// can be read back after the process is detached.
const previewLogFile = "/tmp/preview.log"

// PreviewLogs is a tail of the dev server's captured output.
type PreviewLogs struct {
	Logs    string `json:"logs"`
	Running bool   `json:"running"`
}

func (m *Manager) PreviewLogs(ctx context.Context, id string, lines int) (*PreviewLogs, error) {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return nil, ErrNotFound
	}
	if persisted.SandboxID == "" {
		return &PreviewLogs{}, nil
	}
	if lines <= 0 {
		lines = 100
	}

	tail, err := m.backend.ExecuteCommand(ctx, id,
		fmt.Sprintf("tail -n %d %s 2>/dev/null || true", lines, previewLogFile), sandbox.ExecOpts{})
	if err != nil {
		return nil, fmt.Errorf("read preview logs: %w", err)
	}
	probe, err := m.backend.ExecuteCommand(ctx, id, `pgrep -f "next dev" >/dev/null`, sandbox.ExecOpts{})
	if err != nil {
		return nil, fmt.Errorf("probe preview: %w", err)
	}
	return &PreviewLogs{Logs: tail.Output, Running: probe.Success}, nil
}

// Delete tears the project down: an in-flight generation is cancelled
// first, then the sandbox is destroyed and every local trace removed. The
// remote outcome never blocks local cleanup.
func (m *Manager) Delete(ctx context.Context, id string) error {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}
	ps := m.proj(id, persisted)

	m.mu.Lock()
	cancel := ps.cancelGen
	m.mu.Unlock()

	if cancel != nil {
		// The generation goroutine releases the lock promptly after
		// cancellation, so waiting here is bounded.
		cancel()
		ps.op.Lock()
	} else if !ps.op.TryLock() {
		return ErrBusy
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer ps.op.Unlock()
		m.teardown(ps, id, persisted.Provider, true)
	}()
	return nil
}

// Teardown destroys the project's sandbox but keeps the project record,
// marking it idle. Used by the reaper for inactive projects.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return ErrNotFound
	}
	ps := m.proj(id, persisted)

	if err := m.acquire(ps); err != nil {
		return err
	}
	defer ps.op.Unlock()

	m.teardown(ps, id, persisted.Provider, false)
	return nil
}

// teardown runs the terminating sequence while holding the op lock. Local
// state is always cleared, whatever the remote outcome.
func (m *Manager) teardown(ps *projectState, id, providerType string, deleteRecord bool) {
	// Terminating is reachable from every state; cleanup must never be
	// blocked by a stuck state machine.
	m.mu.Lock()
	ps.state = StateTerminating
	m.mu.Unlock()
	m.publish(id, "terminating", "tearing down sandbox", "")

	if adapter, err := m.providers.Get(providerType); err == nil {
		adapter.CleanupSession(m.ctx, id)
	} else if err := m.backend.Teardown(m.ctx, id); err != nil {
		m.logger.Error("sandbox teardown failed", "project_id", id, "error", err)
	}

	if err := m.store.ClearSandboxHandle(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Error("handle clear failed", "project_id", id, "error", err)
	}
	if err := removeMetadata(m.opts.ProjectsRoot, id); err != nil {
		m.logger.Error("metadata removal failed", "project_id", id, "error", err)
	}

	if deleteRecord {
		if err := m.store.DeleteProject(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			m.logger.Error("project delete failed", "project_id", id, "error", err)
		}
	} else if err := m.store.UpdateProjectStatus(id, "idle"); err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Error("status update failed", "project_id", id, "error", err)
	}

	m.mu.Lock()
	ps.state = StateTerminated
	m.mu.Unlock()
	m.publish(id, "terminated", "sandbox removed", "")
}

// ProjectStatus is the combined persisted record and in-process lifecycle
// state.
type ProjectStatus struct {
	Project *store.Project `json:"project"`
	State   State          `json:"state"`
}

func (m *Manager) Status(ctx context.Context, id string) (*ProjectStatus, error) {
	persisted, err := m.store.GetProject(id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if persisted == nil {
		return nil, ErrNotFound
	}
	ps := m.proj(id, persisted)
	return &ProjectStatus{Project: persisted, State: m.stateOf(ps)}, nil
}

func (m *Manager) List(ctx context.Context) ([]*store.Project, error) {
	return m.store.ListProjects()
}

// Reconcile verifies, at startup, that projects recorded with a sandbox
// handle still have one on the backend. Vanished sandboxes get their local
// state cleared so a fresh create can proceed.
func (m *Manager) Reconcile(ctx context.Context) error {
	active, err := m.store.ListActiveProjects()
	if err != nil {
		return fmt.Errorf("list active projects: %w", err)
	}

	for _, p := range active {
		_, err := m.backend.GetHost(ctx, p.ID, m.opts.PreviewPort)
		switch {
		case err == nil:
			m.logger.Info("sandbox still present", "project_id", p.ID, "sandbox_id", p.SandboxID)
		case errors.Is(err, sandbox.ErrSandboxNotFound):
			m.logger.Warn("sandbox vanished, clearing handle", "project_id", p.ID, "sandbox_id", p.SandboxID)
			if err := m.store.ClearSandboxHandle(p.ID); err != nil {
				m.logger.Error("handle clear failed", "project_id", p.ID, "error", err)
			}
			if err := m.store.UpdateProjectStatus(p.ID, "idle"); err != nil {
				m.logger.Error("status update failed", "project_id", p.ID, "error", err)
			}
			m.mu.Lock()
			delete(m.projects, p.ID)
			m.mu.Unlock()
			m.publish(p.ID, "idle", "sandbox no longer present", "")
		default:
			// Backend unreachable; leave the record alone.
			m.logger.Warn("sandbox probe failed", "project_id", p.ID, "error", err)
		}
	}
	return nil
}
