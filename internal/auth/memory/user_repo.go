// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/internal/auth"
)

// UserRepository is a mutex-guarded map of users. The username index is
// checked and updated under one lock, so concurrent creates of the same
// username admit exactly one.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]auth.User
	byUsername map[string]ulid.ULID
}

// NewUserRepository creates an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[ulid.ULID]auth.User),
		byUsername: make(map[string]ulid.ULID),
	}
}

// Create implements auth.UserRepository.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return oops.Code("USER_CREATE_FAILED").
			With("username", user.Username).
			Wrap(auth.ErrUsernameTaken)
	}
	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

// GetByID implements auth.UserRepository.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return &u, nil
}

// GetByUsername implements auth.UserRepository.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(auth.ErrNotFound)
	}
	u := r.byID[id]
	return &u, nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

var _ auth.UserRepository = (*UserRepository)(nil)
