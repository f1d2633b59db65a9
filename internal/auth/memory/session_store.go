// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/internal/auth"
)

type sessionEntry struct {
	userID    ulid.ULID
	expiresAt time.Time
}

// maxSweepInterval bounds how long expired sessions may linger between sweeps.
const maxSweepInterval = time.Minute

// SessionStore keeps sessions in a map keyed by token hash. Expired entries
// are treated as absent. They are removed when next touched, and Create
// sweeps the whole map at most once per sweep interval.
type SessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	sessions  map[string]sessionEntry
	nextSweep time.Time
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithClock overrides the time source. Used by tests to step past the TTL.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates a SessionStore whose sessions live for ttl.
// A non-positive ttl selects auth.DefaultSessionTTL.
func NewSessionStore(ttl time.Duration, opts ...SessionOption) *SessionStore {
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	s := &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements auth.SessionStore.
func (s *SessionStore) Create(_ context.Context, userID ulid.ULID) (string, error) {
	token, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.sessions[hash] = sessionEntry{userID: userID, expiresAt: now.Add(s.ttl)}
	return token, nil
}

// sweepLocked drops expired sessions once the sweep deadline has passed.
// Callers hold s.mu.
func (s *SessionStore) sweepLocked(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for hash, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, hash)
		}
	}
	s.nextSweep = now.Add(min(s.ttl, maxSweepInterval))
}

// Resolve implements auth.SessionStore.
func (s *SessionStore) Resolve(_ context.Context, token string) (ulid.ULID, error) {
	hash := auth.HashSessionToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[hash]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, hash)
		ok = false
	}
	if !ok {
		return ulid.ULID{}, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return entry.userID, nil
}

// Destroy implements auth.SessionStore.
func (s *SessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, auth.HashSessionToken(token))
	return nil
}

// Len returns the number of sessions held, including expired ones not yet
// evicted.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ auth.SessionStore = (*SessionStore)(nil)
