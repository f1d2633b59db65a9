// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package web

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lireddit/lireddit/internal/post"
)

func TestListPosts(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []*post.Post{{ID: ulid.Make(), OwnerID: ulid.Make(), Title: "first", CreatedAt: now, UpdatedAt: now}}
	f.postRepo.On("List", mock.Anything).Return(want, nil)

	rec := f.do(http.MethodGet, "/posts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var out postsResponse
	decodeBody(t, rec, &out)
	require.Len(t, out.Posts, 1)
	assert.Equal(t, want[0].ID, out.Posts[0].ID)
	assert.Equal(t, "first", out.Posts[0].Title)
}

func TestListPosts_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.postRepo.On("List", mock.Anything).Return(nil, errors.New("db down"))

	rec := f.do(http.MethodGet, "/posts", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestGetPost(t *testing.T) {
	id := ulid.Make()

	t.Run("found", func(t *testing.T) {
		f := newFixture(t)
		f.postRepo.On("Get", mock.Anything, id).Return(&post.Post{ID: id, Title: "x"}, nil)

		rec := f.do(http.MethodGet, "/posts/"+id.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var p post.Post
		decodeBody(t, rec, &p)
		assert.Equal(t, id, p.ID)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		f.postRepo.On("Get", mock.Anything, id).Return(nil, oops.Wrap(post.ErrNotFound))

		rec := f.do(http.MethodGet, "/posts/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/posts/not-a-ulid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreatePost(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/posts", titleRequest{Title: "hello"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates owned post", func(t *testing.T) {
		f := newFixture(t)
		user, cookie := f.login(t, "alice")
		f.postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *post.Post) bool {
			return p.OwnerID == user.ID && p.Title == "hello"
		})).Return(nil)

		rec := f.do(http.MethodPost, "/posts", titleRequest{Title: " hello "}, cookie)

		require.Equal(t, http.StatusCreated, rec.Code)
		var p post.Post
		decodeBody(t, rec, &p)
		assert.Equal(t, user.ID, p.OwnerID)
	})

	t.Run("empty title", func(t *testing.T) {
		f := newFixture(t)
		_, cookie := f.login(t, "alice")

		rec := f.do(http.MethodPost, "/posts", titleRequest{Title: "  "}, cookie)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var out errorResponse
		decodeBody(t, rec, &out)
		assert.Equal(t, "title cannot be empty", out.Error)
	})
}

func TestUpdatePost(t *testing.T) {
	id := ulid.Make()

	t.Run("owner", func(t *testing.T) {
		f := newFixture(t)
		user, cookie := f.login(t, "alice")
		f.postRepo.On("UpdateTitle", mock.Anything, id, user.ID, "renamed", mock.Anything).
			Return(&post.Post{ID: id, OwnerID: user.ID, Title: "renamed"}, nil)

		rec := f.do(http.MethodPatch, "/posts/"+id.String(), titleRequest{Title: "renamed"}, cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		var p post.Post
		decodeBody(t, rec, &p)
		assert.Equal(t, "renamed", p.Title)
	})

	t.Run("not owner", func(t *testing.T) {
		f := newFixture(t)
		user, cookie := f.login(t, "alice")
		f.postRepo.On("UpdateTitle", mock.Anything, id, user.ID, "renamed", mock.Anything).
			Return(nil, oops.Wrap(post.ErrNotFound))

		rec := f.do(http.MethodPatch, "/posts/"+id.String(), titleRequest{Title: "renamed"}, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeletePost(t *testing.T) {
	id := ulid.Make()

	t.Run("requires session", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodDelete, "/posts/"+id.String(), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("owner", func(t *testing.T) {
		f := newFixture(t)
		user, cookie := f.login(t, "alice")
		f.postRepo.On("Delete", mock.Anything, id, user.ID).Return(true, nil)

		rec := f.do(http.MethodDelete, "/posts/"+id.String(), nil, cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		var out deleteResponse
		decodeBody(t, rec, &out)
		assert.True(t, out.Deleted)
	})
}
