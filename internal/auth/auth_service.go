// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/pkg/errutil"
)

// Operation names reported to an OutcomeRecorder.
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpMe       = "me"
	OpLogout   = "logout"
)

// Outcomes reported to an OutcomeRecorder.
const (
	OutcomeSuccess         = "success"
	OutcomeRejected        = "rejected"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeError           = "error"
)

// OutcomeRecorder receives one call per completed Service operation.
type OutcomeRecorder interface {
	RecordAuthOutcome(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthOutcome(string, string) {}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger      *slog.Logger
	recorder    OutcomeRecorder
	hashWorkers int
}

// WithLogger sets the logger used for operation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithRecorder sets the recorder notified of each operation outcome.
func WithRecorder(r OutcomeRecorder) Option {
	return func(o *serviceOptions) { o.recorder = r }
}

// WithHashWorkers sets the number of concurrent password hashing workers.
// Non-positive values select DefaultHashWorkers.
func WithHashWorkers(n int) Option {
	return func(o *serviceOptions) { o.hashWorkers = n }
}

// Service implements register, login, me and logout.
type Service struct {
	users    UserRepository
	sessions SessionStore
	hashes   *HashPool
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// NewAuthService creates a new Service. Hashing runs on a HashPool built
// around hasher.
func NewAuthService(users UserRepository, sessions SessionStore, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("session store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}

	o := serviceOptions{
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("logger cannot be nil")
	}
	if o.recorder == nil {
		o.recorder = nopRecorder{}
	}

	pool, err := NewHashPool(hasher, o.hashWorkers)
	if err != nil {
		return nil, err
	}

	return &Service{
		users:    users,
		sessions: sessions,
		hashes:   pool,
		logger:   o.logger,
		recorder: o.recorder,
	}, nil
}

// Register creates a new account. It never creates a session.
func (s *Service) Register(ctx context.Context, username, password string) Result {
	if errs := ValidateCredentials(username, password); len(errs) > 0 {
		s.recorder.RecordAuthOutcome(OpRegister, OutcomeRejected)
		return Result{Errors: errs}
	}

	hash, err := s.hashes.Hash(ctx, password)
	if err != nil {
		s.operationFailed(ctx, OpRegister, "password hashing failed", err)
		return fail(FieldUnknown, MsgHashFailed)
	}

	user, err := NewUser(username, hash)
	if err != nil {
		s.operationFailed(ctx, OpRegister, "build user failed", err)
		return fail(FieldUnknown, MsgSomethingWrong)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			s.recorder.RecordAuthOutcome(OpRegister, OutcomeRejected)
			return fail(FieldUsername, MsgUsernameTaken)
		}
		s.operationFailed(ctx, OpRegister, "create user failed", oops.
			Code("AUTH_REGISTER_FAILED").
			With("username", user.Username).
			Wrap(err))
		return fail(FieldUnknown, MsgSomethingWrong)
	}

	s.recorder.RecordAuthOutcome(OpRegister, OutcomeSuccess)
	return Result{User: user}
}

// Login checks credentials and, on success, returns the user together with
// a new session token. The token is empty whenever the result failed.
func (s *Service) Login(ctx context.Context, username, password string) (Result, string) {
	normalized := NormalizeUsername(username)

	user, err := s.users.GetByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recorder.RecordAuthOutcome(OpLogin, OutcomeRejected)
			return fail(FieldUsername, MsgUsernameNotFound), ""
		}
		s.operationFailed(ctx, OpLogin, "get user by username failed", oops.
			Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			With("username", normalized).
			Wrap(err))
		return fail(FieldUnknown, MsgSomethingWrong), ""
	}

	valid, err := s.hashes.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.operationFailed(ctx, OpLogin, "verify password failed", oops.
			Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(err))
		return fail(FieldUnknown, MsgSomethingWrong), ""
	}
	if !valid {
		s.recorder.RecordAuthOutcome(OpLogin, OutcomeRejected)
		return fail(FieldPassword, MsgIncorrectPassword), ""
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.operationFailed(ctx, OpLogin, "create session failed", oops.
			Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "create session").
			With("user_id", user.ID.String()).
			Wrap(err))
		return fail(FieldUnknown, MsgSomethingWrong), ""
	}

	s.recorder.RecordAuthOutcome(OpLogin, OutcomeSuccess)
	return Result{User: user}, token
}

// Me resolves the user bound to token. It returns nil when there is no valid
// session, and also when the session points at a user that no longer exists.
// Store failures are logged and reported as no identity.
func (s *Service) Me(ctx context.Context, token string) *User {
	if token == "" {
		s.recorder.RecordAuthOutcome(OpMe, OutcomeUnauthenticated)
		return nil
	}

	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recorder.RecordAuthOutcome(OpMe, OutcomeUnauthenticated)
			return nil
		}
		s.operationFailed(ctx, OpMe, "resolve session failed", oops.
			Code("SESSION_RESOLVE_FAILED").
			Wrap(err))
		return nil
	}

	return s.lookupUser(ctx, userID)
}

func (s *Service) lookupUser(ctx context.Context, userID ulid.ULID) *User {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recorder.RecordAuthOutcome(OpMe, OutcomeUnauthenticated)
			return nil
		}
		s.operationFailed(ctx, OpMe, "get user by id failed", oops.
			Code("AUTH_ME_FAILED").
			With("user_id", userID.String()).
			Wrap(err))
		return nil
	}

	s.recorder.RecordAuthOutcome(OpMe, OutcomeSuccess)
	return user
}

// Logout destroys the session bound to token. It returns false only if the
// store failed to destroy an existing session.
func (s *Service) Logout(ctx context.Context, token string) bool {
	if token == "" {
		s.recorder.RecordAuthOutcome(OpLogout, OutcomeSuccess)
		return true
	}

	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.operationFailed(ctx, OpLogout, "destroy session failed", oops.
			Code("AUTH_LOGOUT_FAILED").
			With("operation", "destroy session").
			Wrap(err))
		return false
	}

	s.recorder.RecordAuthOutcome(OpLogout, OutcomeSuccess)
	return true
}

func (s *Service) operationFailed(ctx context.Context, op, msg string, err error) {
	s.recorder.RecordAuthOutcome(op, OutcomeError)
	errutil.LogErrorContext(ctx, s.logger, msg, err)
}
