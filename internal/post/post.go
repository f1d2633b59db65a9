// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package post manages posts, the content records owned by users.
package post

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxTitleLength bounds a post title, in bytes.
const MaxTitleLength = 300

// ErrNotFound is returned when a post does not exist or is not owned by the
// caller.
var ErrNotFound = errors.New("post not found")

// Post is a titled content record.
type Post struct {
	ID        ulid.ULID `json:"id"`
	OwnerID   ulid.ULID `json:"ownerId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository persists posts.
type Repository interface {
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*Post, error)

	// Get returns a post. Returns an error wrapping ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*Post, error)

	// Create stores a new post.
	Create(ctx context.Context, p *Post) error

	// UpdateTitle changes the title of a post owned by ownerID. Returns an
	// error wrapping ErrNotFound if no such post exists for that owner.
	UpdateTitle(ctx context.Context, id, ownerID ulid.ULID, title string, at time.Time) (*Post, error)

	// Delete removes a post owned by ownerID and reports whether it existed.
	Delete(ctx context.Context, id, ownerID ulid.ULID) (bool, error)
}

// NormalizeTitle trims surrounding whitespace and checks length.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", oops.Code("POST_INVALID_TITLE").Errorf("title cannot be empty")
	}
	if len(t) > MaxTitleLength {
		return "", oops.Code("POST_INVALID_TITLE").
			With("length", len(t)).
			Errorf("title exceeds %d bytes", MaxTitleLength)
	}
	return t, nil
}
