// Package relay broadcasts per-project progress to any number of
// observers. Publishing never blocks; observers that fall behind lose
// messages rather than stalling the lifecycle.
package relay

import (
	"log/slog"
	"sync"

	"github.com/p-arndt/werkbank/protocol"
)

// subscriberBuffer is the per-subscriber backlog before messages are
// dropped.
const subscriberBuffer = 64

// Message is one unit pushed to project observers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ProjectStatus builds a project_status message.
func ProjectStatus(status, message, hostURL string) Message {
	return Message{
		Type: "project_status",
		Data: protocol.StatusData{Status: status, Message: message, HostURL: hostURL},
	}
}

// GenerationEvent wraps a provider event for broadcast.
func GenerationEvent(data any) Message {
	return Message{Type: "generation_event", Data: data}
}

// Relay is a per-project fan-out of progress messages.
type Relay struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan Message
	nextID int
	logger *slog.Logger
}

func New(logger *slog.Logger) *Relay {
	return &Relay{
		subs:   make(map[string]map[int]chan Message),
		logger: logger,
	}
}

// Subscribe registers an observer for projectID. The returned cancel
// func unregisters the observer and closes its channel; it is safe to
// call more than once.
func (r *Relay) Subscribe(projectID string) (<-chan Message, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Message, subscriberBuffer)
	set, ok := r.subs[projectID]
	if !ok {
		set = make(map[int]chan Message)
		r.subs[projectID] = set
	}
	id := r.nextID
	r.nextID++
	set[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if set, ok := r.subs[projectID]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(r.subs, projectID)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers msg to every observer of projectID. Observers whose
// buffer is full are skipped.
func (r *Relay) Publish(projectID string, msg Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, ch := range r.subs[projectID] {
		select {
		case ch <- msg:
		default:
			r.logger.Warn("dropping relay message for slow subscriber",
				"project_id", projectID, "subscriber", id, "type", msg.Type)
		}
	}
}

// Subscribers reports the number of observers for projectID.
func (r *Relay) Subscribers(projectID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[projectID])
}
