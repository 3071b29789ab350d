package otp

import (
	"context"
	"sync"
)

// MemoryStore is an in-process SessionStore. It holds at most one session per
// phone, so it is only suitable for a single instance.
type MemoryStore struct {
	sessions map[string]Session
	latest   map[string]string // phone -> session id
	mu       sync.RWMutex
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		latest:   make(map[string]string),
	}
}

// Save stores s and drops the previous session for the same phone. Sessions
// that had expired by the time s was issued are dropped too.
func (st *MemoryStore) Save(_ context.Context, s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if prev, ok := st.latest[s.Phone]; ok {
		delete(st.sessions, prev)
	}
	st.pruneExpired(s)
	st.sessions[s.ID] = *s
	st.latest[s.Phone] = s.ID
	return nil
}

// pruneExpired removes sessions that expired before s was issued. Callers hold mu.
func (st *MemoryStore) pruneExpired(s *Session) {
	if s.IssuedAt.IsZero() {
		return
	}
	for id, old := range st.sessions {
		if old.ExpiresAt.After(s.IssuedAt) {
			continue
		}
		delete(st.sessions, id)
		if st.latest[old.Phone] == id {
			delete(st.latest, old.Phone)
		}
	}
}

// Get returns the session with the given id.
func (st *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok || st.latest[s.Phone] != id {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Consume removes the current session with the given id.
func (st *MemoryStore) Consume(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok || st.latest[s.Phone] != id {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	delete(st.latest, s.Phone)
	return nil
}

// Delete removes the session with the given id. Unknown ids are ignored.
func (st *MemoryStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	delete(st.sessions, id)
	if st.latest[s.Phone] == id {
		delete(st.latest, s.Phone)
	}
	return nil
}
