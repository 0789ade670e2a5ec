package ws

import (
	"sync"

	"github.com/devmeet/devmeet/internal/domain"
)

// Registry binds a live connection id to {room, display name}. It is the
// leaf dependency for every other manager: a connection is "in" a room iff
// it has a binding here.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]domain.Member
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]domain.Member),
	}
}

// Bind registers a connection. A connection belongs to at most one room at
// a time; binding twice is rejected.
func (r *Registry) Bind(connectionID, roomID, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connectionID]; ok {
		return domain.ErrAlreadyInRoom
	}

	r.conns[connectionID] = domain.Member{
		ConnectionID: connectionID,
		DisplayName:  displayName,
		RoomID:       roomID,
	}
	return nil
}

// Lookup reports the binding for a connection. A miss is not an error:
// disconnects can race joins, and callers treat it as a no-op.
func (r *Registry) Lookup(connectionID string) (domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.conns[connectionID]
	return m, ok
}

// Unbind removes a binding and returns it. Unbinding an unknown id is a
// no-op.
func (r *Registry) Unbind(connectionID string) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.conns[connectionID]
	if ok {
		delete(r.conns, connectionID)
	}
	return m, ok
}
