package session

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/worldwire/internal/models"
)

// DefaultCapacity bounds how many sessions one instance holds before
// CreateSession reports resource exhaustion.
const DefaultCapacity = 256

// entry pairs a session with its own mutex and RNG. The per-entry mutex
// serializes mutating operations on one session while leaving other
// sessions free to proceed concurrently.
type entry struct {
	mu      sync.Mutex
	session *models.Session
	pending []models.Action
	rng     *rand.Rand
}

// Registry is the explicit session store: create, look up, discard. There
// is no ambient global state; everything flows through a Registry instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
	capacity int
}

// NewRegistry creates a registry bounded to capacity sessions. A capacity
// of zero or less falls back to DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*entry),
		capacity: capacity,
	}
}

// add registers a new session. Returns ErrResourceExhausted at capacity.
func (r *Registry) add(session *models.Session, rng *rand.Rand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.capacity {
		return ErrResourceExhausted
	}
	r.sessions[session.ID] = &entry{session: session, rng: rng}
	return nil
}

// get looks up a live session entry.
func (r *Registry) get(id uuid.UUID) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Discard drops a session from the registry. Discarding an unknown id is a
// no-op; the session is already gone.
func (r *Registry) Discard(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.mu.Lock()
		e.session.Status = models.SessionStatusDiscarded
		e.mu.Unlock()
		delete(r.sessions, id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionsByMode lists the ids of live sessions in the given mode. Used by
// the autopilot to find observer sessions due for a tick.
func (r *Registry) SessionsByMode(mode models.GameMode) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []uuid.UUID
	for id, e := range r.sessions {
		e.mu.Lock()
		match := e.session.Mode == mode
		e.mu.Unlock()
		if match {
			ids = append(ids, id)
		}
	}
	return ids
}
