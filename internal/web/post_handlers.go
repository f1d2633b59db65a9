// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package web

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/lireddit/lireddit/internal/post"
	"github.com/lireddit/lireddit/pkg/errutil"
)

type titleRequest struct {
	Title string `json:"title"`
}

type postsResponse struct {
	Posts []*post.Post `json:"posts"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.internalError(w, r, "list posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "get post failed", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	var in titleRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	p, err := s.posts.Create(r.Context(), user.ID, in.Title)
	if err != nil {
		s.postError(w, r, "create post failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	var in titleRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	p, err := s.posts.UpdateTitle(r.Context(), id, user.ID, in.Title)
	if err != nil {
		s.postError(w, r, "update post failed", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := s.currentUser(w, r)
	if user == nil {
		return
	}

	deleted, err := s.posts.Delete(r.Context(), id, user.ID)
	if err != nil {
		s.internalError(w, r, "delete post failed", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func pathID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBadID)
		return ulid.ULID{}, false
	}
	return id, true
}

// postError reports invalid titles to the caller and everything else as an
// internal failure.
func (s *Server) postError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errutil.Code(err) == "POST_INVALID_TITLE" {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.internalError(w, r, msg, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	errutil.LogErrorContext(r.Context(), s.logger, msg, err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}
