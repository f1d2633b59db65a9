// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/internal/auth"
	"github.com/lireddit/lireddit/internal/post"
)

// AuthService is the subset of auth.Service used by the handlers.
type AuthService interface {
	Register(ctx context.Context, username, password string) auth.Result
	Login(ctx context.Context, username, password string) (auth.Result, string)
	Me(ctx context.Context, token string) *auth.User
	Logout(ctx context.Context, token string) bool
}

// PostService is the subset of post.Service used by the handlers.
type PostService interface {
	List(ctx context.Context) ([]*post.Post, error)
	Get(ctx context.Context, id ulid.ULID) (*post.Post, error)
	Create(ctx context.Context, ownerID ulid.ULID, title string) (*post.Post, error)
	UpdateTitle(ctx context.Context, id, ownerID ulid.ULID, title string) (*post.Post, error)
	Delete(ctx context.Context, id, ownerID ulid.ULID) (bool, error)
}

// RequestRecorder receives one call per served request.
type RequestRecorder interface {
	RecordHTTPRequest(route string, status int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordHTTPRequest(string, int, time.Duration) {}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":4000".
	Addr string
	// CORSOrigin is the single origin allowed to make credentialed requests.
	// Empty disables CORS headers.
	CORSOrigin string
	// SecureCookies marks the session cookie Secure. Set in production.
	SecureCookies bool
	// SessionTTL is the cookie lifetime. Zero selects auth.DefaultSessionTTL.
	SessionTTL time.Duration
	Logger     *slog.Logger
	Recorder   RequestRecorder
}

// Server serves the public API.
type Server struct {
	opts       Options
	auth       AuthService
	posts      PostService
	logger     *slog.Logger
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server.
func NewServer(authSvc AuthService, posts PostService, opts Options) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("auth service is required")
	}
	if posts == nil {
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("post service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	s := &Server{
		opts:   opts,
		auth:   authSvc,
		posts:  posts,
		logger: opts.Logger,
	}
	s.handler = s.instrument(s.recoverPanics(s.cors(s.routes())))
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /hello", s.handleHello)

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /me", s.handleMe)

	mux.HandleFunc("GET /posts", s.handleListPosts)
	mux.HandleFunc("POST /posts", s.handleCreatePost)
	mux.HandleFunc("GET /posts/{id}", s.handleGetPost)
	mux.HandleFunc("PATCH /posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /posts/{id}", s.handleDeletePost)

	return mux
}

// Handler returns the fully wrapped API handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving. The returned channel receives a serve error, if
// any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", s.opts.Addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the bound address, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
