package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEvents streams a project's progress feed as Server-Sent Events.
// Each relay message becomes one SSE frame named after its type.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateProjectID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := setupSSE(w); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	flusher := w.(http.Flusher)

	events, cancel := s.relay.Subscribe(id)
	defer cancel()

	// Push headers out before the first message so the client sees the
	// stream open even when the project is quiet.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	s.logger.Debug("events subscriber attached", "project_id", id)

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(msg.Data)
			if err != nil {
				s.logger.Error("event marshal failed", "project_id", id, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", msg.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// setupSSE configures headers for Server-Sent Events streaming.
func setupSSE(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	if _, ok := w.(http.Flusher); !ok {
		return fmt.Errorf("streaming not supported")
	}

	return nil
}
