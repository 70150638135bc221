package calculator

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/gemini-calculator/domain/calculation"
	nanoid "github.com/jaevor/go-nanoid"
)

const sessionIDLength = 21

// session owns one calculator state. mu serialises every Dispatch.
type session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	state     calculation.State
	updatedAt time.Time
}

// snapshot returns the rendered session. Caller must hold s.mu.
func (s *session) snapshot() Session {
	return Session{
		ID:         s.id,
		View:       calculation.Render(s.state),
		Generation: s.state.Generation,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
}

// dispatch applies e under the caller-held lock.
func (s *session) dispatch(e calculation.Event, now time.Time) *calculation.Request {
	var req *calculation.Request
	s.state, req = calculation.Dispatch(s.state, e)
	s.updatedAt = now
	return req
}

// SessionStore keeps sessions in memory, keyed by a URL-safe nanoid.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	newID    func() string
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() (*SessionStore, error) {
	gen, err := nanoid.Standard(sessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create session id generator: %w", err)
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		newID:    gen,
		now:      time.Now,
	}, nil
}

// create adds a fresh session with an empty expression.
func (st *SessionStore) create() *session {
	now := st.now()
	s := &session{
		id:        st.newID(),
		createdAt: now,
		updatedAt: now,
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// get returns the session with id.
func (st *SessionStore) get(id string) (*session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// remove deletes the session with id.
func (st *SessionStore) remove(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns their IDs.
// Sessions with an evaluation in flight are kept.
func (st *SessionStore) Sweep(ttl time.Duration) []string {
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []string
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := !s.state.Loading && s.updatedAt.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}
