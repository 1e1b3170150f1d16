package messaging

import (
	"sync"

	"collabo/models"
)

// Channel is the live endpoint for one connected user. Send must not
// block: implementations queue the message or fail fast.
type Channel interface {
	Send(msg models.Message) error
	Close() error
}

// Registry maps an authenticated user id to at most one live Channel.
// Pure in-memory state: contents are lost on restart, which is fine
// because live delivery is best-effort on top of persistence.
//
// The registry is an injected object owned by the server, not a
// package-level singleton, so tests can run several side by side.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Channel)}
}

// Register records ch as the current endpoint for userID and returns
// the channel it replaced, if any. Last writer wins: a second login
// displaces the first, and the caller decides what to do with the old
// channel (the websocket server closes it).
func (r *Registry) Register(userID string, ch Channel) Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.conns[userID]
	r.conns[userID] = ch
	return old
}

// Unregister removes the mapping for userID. It is idempotent and
// never an error. When ch is non-nil the entry is only removed if it
// still is ch, so a connection torn down after being displaced by a
// fresh login cannot remove its successor.
func (r *Registry) Unregister(userID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch == nil || r.conns[userID] == ch {
		delete(r.conns, userID)
	}
}

// Lookup returns the live channel for userID, if any. Non-blocking.
func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.conns[userID]
	return ch, ok
}

// Count reports the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
