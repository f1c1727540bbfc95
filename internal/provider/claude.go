package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-arndt/werkbank/internal/sandbox"
	"github.com/p-arndt/werkbank/protocol"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// initialContext is appended to the first instruction of a project so the
// agent knows the scaffold it is working in.
const initialContext = `

<initial_context>
## Project Directory Structure (node_modules are already installed)
.gitignore
next.config.mjs
package.json
tsconfig.json
src/app/layout.tsx
src/app/page.tsx
public/
node_modules/
</initial_context>`

// ClaudeAdapter drives the Claude Code agent through the sandbox backend's
// streamed generate call, mapping its wire events into the uniform Event
// protocol.
type ClaudeAdapter struct {
	backend      sandbox.Backend
	sessions     *SessionRegistry
	systemPrompt string
	defaultModel string
	logger       *slog.Logger
}

// ClaudeOptions configure the adapter. Zero values fall back to defaults.
type ClaudeOptions struct {
	SystemPrompt string
	DefaultModel string
}

func NewClaudeAdapter(backend sandbox.Backend, sessions *SessionRegistry, opts ClaudeOptions, logger *slog.Logger) *ClaudeAdapter {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = FallbackSystemPrompt
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = defaultClaudeModel
	}
	return &ClaudeAdapter{
		backend:      backend,
		sessions:     sessions,
		systemPrompt: opts.SystemPrompt,
		defaultModel: opts.DefaultModel,
		logger:       logger,
	}
}

func (a *ClaudeAdapter) Type() string { return "claude" }

func (a *ClaudeAdapter) CheckAvailability(ctx context.Context) Availability {
	if err := a.backend.Ping(ctx); err != nil {
		return Availability{
			Available:  false,
			Configured: false,
			Detail:     fmt.Sprintf("sandbox backend not reachable: %v", err),
		}
	}
	return Availability{Available: true, Configured: true, Detail: "sandbox backend ready"}
}

func (a *ClaudeAdapter) ExecuteWithStreaming(ctx context.Context, opts ExecuteOptions) (<-chan Event, error) {
	if opts.ProjectID == "" {
		return nil, ErrProjectIdentity
	}
	out := make(chan Event, 16)
	go a.run(ctx, opts, out)
	return out, nil
}

func (a *ClaudeAdapter) run(ctx context.Context, opts ExecuteOptions, out chan<- Event) {
	defer close(out)

	send := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	resume := opts.ResumeSessionID
	if resume == "" {
		resume, _ = a.sessions.Get(opts.ProjectID)
	}
	if resume != "" {
		if err := a.backend.SetSession(ctx, opts.ProjectID, resume); err != nil {
			// Resumption is an optimization; start a fresh conversation.
			a.logger.Warn("session resume failed, starting fresh",
				"project_id", opts.ProjectID, "session_id", resume, "error", err)
		}
	}

	instruction := opts.Instruction
	if opts.IsInitial {
		instruction += initialContext
	}

	model := opts.Model
	if model == "" {
		model = a.defaultModel
	}

	req := protocol.GenerateRequest{
		ProjectID: opts.ProjectID,
		Prompt:    a.systemPrompt + "\n\nUser Request: " + instruction,
		Model:     model,
		Streaming: true,
	}

	raw := make(chan protocol.GenerationEvent, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.backend.Generate(ctx, req, raw)
		close(raw)
	}()

	terminal := false
	for wire := range raw {
		if terminal {
			// The stream contract forbids events after a terminal one;
			// drain whatever the backend still pushes.
			continue
		}
		ev, ok := a.mapEvent(ctx, opts.ProjectID, wire)
		if !ok {
			continue
		}
		if ev.Terminal() {
			terminal = true
		}
		if !send(ev) {
			return
		}
	}

	err := <-errCh
	if terminal {
		return
	}

	// The stream ended without the provider saying so: surface a terminal
	// error so consumers can tell a broken connection from completion.
	msg := "generation stream ended unexpectedly"
	if err != nil {
		msg = fmt.Sprintf("generation stream failed: %v", err)
	}
	a.logger.Error("generation stream broke", "project_id", opts.ProjectID, "error", err)
	send(Event{Kind: KindError, ProjectID: opts.ProjectID, Content: msg})
}

// mapEvent converts one wire event into the uniform variant. Empty no-op
// chunks are coalesced away (ok=false).
func (a *ClaudeAdapter) mapEvent(ctx context.Context, projectID string, wire protocol.GenerationEvent) (Event, bool) {
	switch wire.Type {
	case protocol.EventUpdate:
		if strings.TrimSpace(wire.Content) == "" {
			return Event{}, false
		}
		return Event{Kind: KindText, ProjectID: projectID, Content: wire.Content}, true

	case protocol.EventToolUse:
		kind := KindToolStart
		if wire.IsResult {
			kind = KindToolResult
		}
		return Event{
			Kind:        kind,
			ProjectID:   projectID,
			Content:     wire.Content,
			ToolID:      wire.ToolID,
			ToolName:    wire.ToolName,
			ToolInput:   wire.ToolInput,
			ToolIsError: wire.IsError,
		}, true

	case protocol.EventTodoList:
		// Todo updates carry no dedicated variant; surface them as text.
		if strings.TrimSpace(wire.Content) == "" {
			return Event{}, false
		}
		return Event{Kind: KindText, ProjectID: projectID, Content: wire.Content}, true

	case protocol.EventCodeGeneration:
		return Event{Kind: KindCodeGeneration, ProjectID: projectID, Content: wire.Content}, true

	case protocol.EventError:
		msg := wire.Error
		if msg == "" {
			msg = "unknown provider error"
		}
		return Event{Kind: KindError, ProjectID: projectID, Content: msg}, true

	case protocol.EventComplete:
		sessionID := wire.SessionID
		if sessionID == "" {
			// Older bridges report the session only via the session
			// endpoint.
			if got, err := a.backend.GetSession(ctx, projectID); err == nil {
				sessionID = got
			}
		}
		if sessionID != "" {
			a.sessions.Set(projectID, sessionID)
		}
		return Event{Kind: KindResult, ProjectID: projectID, SessionID: sessionID}, true

	default:
		a.logger.Debug("unknown generation event type", "project_id", projectID, "type", wire.Type)
		return Event{}, false
	}
}

func (a *ClaudeAdapter) GetSessionID(projectID string) (string, bool) {
	return a.sessions.Get(projectID)
}

func (a *ClaudeAdapter) CleanupSession(ctx context.Context, projectID string) {
	a.sessions.Clear(projectID)

	if err := a.backend.Teardown(ctx, projectID); err != nil {
		// Local invalidation must succeed regardless of the remote outcome.
		a.logger.Error("remote session teardown failed", "project_id", projectID, "error", err)
	}
}
