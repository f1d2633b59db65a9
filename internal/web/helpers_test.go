// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lireddit/lireddit/internal/auth"
	"github.com/lireddit/lireddit/internal/auth/memory"
	"github.com/lireddit/lireddit/internal/post"
	"github.com/lireddit/lireddit/internal/post/mocks"
)

// plainHasher keeps handler tests fast; hashing itself is covered in auth.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "plain$" + pw, nil }

func (plainHasher) Verify(pw, hash string) (bool, error) { return hash == "plain$"+pw, nil }

type recorded struct {
	route  string
	status int
}

type requestRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (r *requestRecorder) RecordHTTPRequest(route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recorded{route, status})
}

func (r *requestRecorder) last() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

type fixture struct {
	server   *Server
	users    *memory.UserRepository
	sessions *memory.SessionStore
	postRepo *mocks.MockRepository
	recorder *requestRecorder
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserRepository(),
		sessions: memory.NewSessionStore(time.Hour),
		postRepo: mocks.NewMockRepository(t),
		recorder: &requestRecorder{},
	}

	authSvc, err := auth.NewAuthService(f.users, f.sessions, plainHasher{})
	require.NoError(t, err)
	postSvc, err := post.NewService(f.postRepo)
	require.NoError(t, err)

	opts := Options{
		CORSOrigin: "http://localhost:3000",
		Recorder:   f.recorder,
	}
	for _, m := range mutate {
		m(&opts)
	}

	f.server, err = NewServer(authSvc, postSvc, opts)
	require.NoError(t, err)
	return f
}

func (f *fixture) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

// login registers a user and returns the session cookie set by /login.
func (f *fixture) login(t *testing.T, username string) (*auth.User, *http.Cookie) {
	t.Helper()
	creds := credentials{Username: username, Password: "correct-horse"}
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/register", creds).Code)

	rec := f.do(http.MethodPost, "/login", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var res auth.Result
	decodeBody(t, rec, &res)
	return res.User, sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookieName)
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"),
		"content type %q", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}
