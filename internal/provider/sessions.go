package provider

import "sync"

// SessionRegistry maps project ids to provider session ids so a later
// generation call can resume prior context. Volatile process-wide state;
// the lifecycle manager's per-project serialization guards mutation order.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]string)}
}

// Set overwrites the session id for the project.
func (r *SessionRegistry) Set(projectID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[projectID] = sessionID
}

// Get returns the last known session id for the project.
func (r *SessionRegistry) Get(projectID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sessions[projectID]
	return id, ok
}

// Clear removes the project's entry. Clearing an absent entry is a no-op.
func (r *SessionRegistry) Clear(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, projectID)
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
