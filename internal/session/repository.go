package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for operations on an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Repository is the concurrency-safe contract for session state.
type Repository interface {
	// Put stores a session.
	Put(s *Session)

	// Get returns the session with the given id.
	Get(id ID) (*Session, bool)

	// Delete removes a session and returns it so the caller can tear it
	// down. Deleting an unknown id is a no-op for idempotency.
	Delete(id ID) (*Session, bool)

	// ActiveCount returns the number of live sessions. Used for metrics.
	ActiveCount() int
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[ID]*Session
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[ID]*Session)}
}

// Put implements Repository.Put.
func (r *InMemoryRepository) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get implements Repository.Get.
func (r *InMemoryRepository) Get(id ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete implements Repository.Delete.
func (r *InMemoryRepository) Delete(id ID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// ActiveCount implements Repository.ActiveCount.
func (r *InMemoryRepository) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
