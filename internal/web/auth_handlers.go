// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package web

import (
	"io"
	"net/http"

	"github.com/lireddit/lireddit/internal/auth"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	User *auth.User `json:"user"`
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client may disconnect
	io.WriteString(w, "hello world")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	res := s.auth.Register(r.Context(), in.Username, in.Password)
	writeJSON(w, resultStatus(res), res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	res, token := s.auth.Login(r.Context(), in.Username, in.Password)
	if !res.Failed() && token != "" {
		s.setSessionCookie(w, token)
	}
	writeJSON(w, resultStatus(res), res)
}

// handleMe answers {"user":null} both without a session and when the session
// outlives its user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{User: s.auth.Me(r.Context(), s.sessionToken(r))})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ok := s.auth.Logout(r.Context(), s.sessionToken(r))
	s.clearSessionCookie(w)

	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, logoutResponse{OK: ok})
}

// currentUser resolves the session user, writing a 401 when there is none.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) *auth.User {
	user := s.auth.Me(r.Context(), s.sessionToken(r))
	if user == nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	}
	return user
}
