// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package postgres implements post.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/internal/post"
)

type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements post.Repository using PostgreSQL.
type Repository struct {
	pool poolIface
}

// NewRepository creates a new Repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

const postColumns = `id, owner_id, title, created_at, updated_at`

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]*post.Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, oops.With("operation", "list posts").Wrap(err)
	}
	defer rows.Close()

	posts := []*post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, oops.With("operation", "scan post").Wrap(err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate posts").Wrap(err)
	}
	return posts, nil
}

// Get retrieves a post by ID.
func (r *Repository) Get(ctx context.Context, id ulid.ULID) (*post.Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id.String())
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").With("id", id.String()).Wrap(post.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get post").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// Create stores a new post.
func (r *Repository) Create(ctx context.Context, p *post.Post) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, owner_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID.String(), p.OwnerID.String(), p.Title, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return oops.With("operation", "insert post").With("id", p.ID.String()).Wrap(err)
	}
	return nil
}

// UpdateTitle retitles a post owned by ownerID.
func (r *Repository) UpdateTitle(ctx context.Context, id, ownerID ulid.ULID, title string, at time.Time) (*post.Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET title = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
		RETURNING `+postColumns,
		id.String(), ownerID.String(), title, at)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("id", id.String()).
			With("owner_id", ownerID.String()).
			Wrap(post.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "update post title").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// Delete removes a post owned by ownerID.
func (r *Repository) Delete(ctx context.Context, id, ownerID ulid.ULID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND owner_id = $2`, id.String(), ownerID.String())
	if err != nil {
		return false, oops.With("operation", "delete post").With("id", id.String()).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var (
		p              post.Post
		idStr, ownerID string
	)
	if err := row.Scan(&idStr, &ownerID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with operation context
	}
	var err error
	if p.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("POST_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	if p.OwnerID, err = ulid.Parse(ownerID); err != nil {
		return nil, oops.Code("POST_CORRUPT_ID").With("owner_id", ownerID).Wrap(err)
	}
	return &p, nil
}

var _ post.Repository = (*Repository)(nil)
