// Package protocol defines the JSON message types exchanged between the
// werkbank daemon and a sandbox provisioning backend, plus the status
// payloads pushed to observers.
package protocol

import "time"

// InitializeRequest asks the backend to provision a sandbox for a project.
type InitializeRequest struct {
	ProjectID string `json:"project_id"`
}

// InitializeResponse carries the provisioned sandbox id.
type InitializeResponse struct {
	SandboxID string `json:"sandbox_id"`
}

// ExecuteRequest runs a shell command inside a project's sandbox.
type ExecuteRequest struct {
	ProjectID  string `json:"project_id"`
	Command    string `json:"command"`
	Background bool   `json:"background,omitempty"`
	TimeoutMs  int    `json:"timeout_ms,omitempty"`
}

// ExecuteResponse reports the outcome of a command. A non-zero exit inside
// the sandbox yields Success=false with captured output; it is never a
// transport error.
type ExecuteResponse struct {
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exit_code,omitempty"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// HostResponse carries the public URL for a sandbox port.
type HostResponse struct {
	HostURL string `json:"host_url"`
}

// SessionResponse carries the provider session id held by the backend.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// SetSessionRequest installs a provider session id for resumption.
type SetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// GenerateRequest starts a streamed code-generation run.
type GenerateRequest struct {
	ProjectID string `json:"project_id"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	Streaming bool   `json:"streaming"`
}

// GenerationEventType discriminates the units of the backend's generation
// event stream.
type GenerationEventType string

const (
	EventUpdate         GenerationEventType = "update"
	EventToolUse        GenerationEventType = "tool_use"
	EventTodoList       GenerationEventType = "todo_list"
	EventCodeGeneration GenerationEventType = "code_generation"
	EventError          GenerationEventType = "error"
	EventComplete       GenerationEventType = "complete"
)

// GenerationEvent is one pushed unit of the backend's generate stream.
// Exactly one of Content or Error is meaningful depending on Type.
type GenerationEvent struct {
	Type      GenerationEventType `json:"type"`
	Content   string              `json:"content,omitempty"`
	Error     string              `json:"error,omitempty"`
	SessionID string              `json:"session_id,omitempty"`

	// Tool fields, set when Type is tool_use.
	ToolID    string         `json:"tool_id,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`
	IsResult  bool           `json:"is_result,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e GenerationEvent) Terminal() bool {
	return e.Type == EventError || e.Type == EventComplete
}

// StatusMessage is broadcast to project observers through the progress
// relay.
type StatusMessage struct {
	Type string     `json:"type"`
	Data StatusData `json:"data"`
}

// StatusData is the payload of a project_status message.
type StatusData struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	HostURL string `json:"host_url,omitempty"`
}

// NewStatusMessage builds a project_status message.
func NewStatusMessage(status, message, hostURL string) StatusMessage {
	return StatusMessage{
		Type: "project_status",
		Data: StatusData{Status: status, Message: message, HostURL: hostURL},
	}
}

// SandboxMetadata is the per-project durability record written next to the
// daemon so external tooling can discover sandbox projects without the
// database.
type SandboxMetadata struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	SandboxID string    `json:"sandbox_id"`
	HostURL   string    `json:"host_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Type      string    `json:"type"`
}
