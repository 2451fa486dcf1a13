package users

import (
	"context"
	"sync"
)

// Repository defines the interface for user lookups
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetProvider returns the user only when its provider flag is set;
	// ErrUserNotFound otherwise.
	GetProvider(ctx context.Context, id int64) (*User, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]*User
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[int64]*User)}
}

// Put stores or replaces a user.
func (r *InMemoryRepository) Put(u *User) {
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
}

// GetByID retrieves a user by id
func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetProvider retrieves a provider-flagged user by id
func (r *InMemoryRepository) GetProvider(ctx context.Context, id int64) (*User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.Provider {
		return nil, ErrUserNotFound
	}
	return u, nil
}
