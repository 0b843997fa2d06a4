package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

// SessionStore is a mutex guarded SessionRepository. Expired entries are
// dropped lazily on read.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]domain.Session
	now   func() time.Time
}

var _ repository.SessionRepository = (*SessionStore)(nil)

// NewSessionStore returns an empty store on the wall clock.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		items: make(map[string]domain.Session),
		now:   time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// Create stores a copy of the session.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = *session
	return nil
}

// Get returns repository.ErrNotFound for unknown or expired sessions.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if session.Expired(s.now()) {
		delete(s.items, id)
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

// Delete is a no-op for unknown ids.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// DeleteByUser drops every session of userID except keepID.
func (s *SessionStore) DeleteByUser(_ context.Context, userID int64, keepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.items {
		if session.UserID == userID && id != keepID {
			delete(s.items, id)
		}
	}
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
