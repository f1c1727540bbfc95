// Package provider defines the uniform event protocol emitted during code
// generation, the adapter contract every generation backend must satisfy,
// and the process-wide session registry.
package provider

// Kind discriminates the closed set of event variants. Every adapter maps
// its native wire format into these at the boundary; provider-specific
// shapes never leak past an adapter.
type Kind string

const (
	KindText           Kind = "text"
	KindToolStart      Kind = "tool_start"
	KindToolResult     Kind = "tool_result"
	KindCodeGeneration Kind = "code_generation"
	KindError          Kind = "error"
	KindResult         Kind = "result"
)

// Event is one unit of the uniform streaming protocol. A stream contains
// exactly one terminal event (result or error) and nothing after it.
type Event struct {
	Kind      Kind   `json:"kind"`
	ProjectID string `json:"project_id"`
	Content   string `json:"content,omitempty"`

	// Tool fields, set for tool_start and tool_result.
	ToolID      string         `json:"tool_id,omitempty"`
	ToolName    string         `json:"tool_name,omitempty"`
	ToolInput   map[string]any `json:"tool_input,omitempty"`
	ToolIsError bool           `json:"tool_is_error,omitempty"`

	// Result fields, set on the terminal result event.
	SessionID  string `json:"session_id,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Terminal reports whether the event ends its stream.
func (e Event) Terminal() bool {
	return e.Kind == KindError || e.Kind == KindResult
}
