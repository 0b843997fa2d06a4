// Package memory holds in-process stores used by the memory drivers and by
// tests. Records are cloned on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
)

// UserStore is a mutex guarded UserRepository.
type UserStore struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]*domain.User
	byEmail map[string]int64
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore returns an empty store; ids start at 1.
func NewUserStore() *UserStore {
	return &UserStore{
		items:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

// Create assigns the next id and timestamps. A taken email returns repository.ErrEmailTaken.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return repository.ErrEmailTaken
	}

	now := time.Now().UTC()
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	s.items[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

// Update replaces the stored record, keeping CreatedAt.
func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return repository.ErrEmailTaken
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()

	delete(s.byEmail, current.Email)
	s.items[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetByID returns a copy of the user.
func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.Clone(), nil
}

// GetByEmail looks up by the normalized email.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.items[id].Clone(), nil
}

// List returns every user ordered by id.
func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.items))
	for _, user := range s.items {
		users = append(users, *user.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Delete removes the user unless it is the last admin.
func (s *UserStore) Delete(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if user.IsAdmin() && s.countAdminsLocked() <= 1 {
		return nil, repository.ErrLastAdmin
	}

	delete(s.items, id)
	delete(s.byEmail, user.Email)
	return user.Clone(), nil
}

// CountAdmins reports how many users hold the admin role.
func (s *UserStore) CountAdmins(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countAdminsLocked(), nil
}

func (s *UserStore) countAdminsLocked() int {
	n := 0
	for _, user := range s.items {
		if user.IsAdmin() {
			n++
		}
	}
	return n
}
