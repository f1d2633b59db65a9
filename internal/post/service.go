// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package post

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service exposes post operations. Mutations require an owner, which the
// caller resolves from the session.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("POST_INVALID_SERVICE").Errorf("post repository is required")
	}
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

// List returns all posts, newest first.
func (s *Service) List(ctx context.Context) ([]*Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").Wrap(err)
	}
	return posts, nil
}

// Get returns the post with id, or nil if there is none.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Post, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// Create stores a new post owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, title string) (*Post, error) {
	if ownerID.IsZero() {
		return nil, oops.Code("POST_INVALID_OWNER").Errorf("owner is required")
	}
	t, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Post{
		ID:        ulid.Make(),
		OwnerID:   ownerID,
		Title:     t,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, oops.Code("POST_CREATE_FAILED").With("owner_id", ownerID.String()).Wrap(err)
	}
	return p, nil
}

// UpdateTitle retitles a post owned by ownerID. It returns nil if the post
// does not exist or belongs to someone else.
func (s *Service) UpdateTitle(ctx context.Context, id, ownerID ulid.ULID, title string) (*Post, error) {
	t, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.UpdateTitle(ctx, id, ownerID, t, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("POST_UPDATE_FAILED").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// Delete removes a post owned by ownerID and reports whether one was removed.
func (s *Service) Delete(ctx context.Context, id, ownerID ulid.ULID) (bool, error) {
	ok, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return false, oops.Code("POST_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	return ok, nil
}
