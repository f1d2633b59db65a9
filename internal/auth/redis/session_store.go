// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package redis implements auth.SessionStore on Redis.
//
// Each session is one key, sess:<sha256(token)>, holding the user ID and
// carrying the session TTL, so Redis expires sessions on its own.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/lireddit/lireddit/internal/auth"
)

// KeyPrefix namespaces session keys.
const KeyPrefix = "sess:"

// client is the subset of goredis.Cmdable the store uses.
type client interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// SessionStore implements auth.SessionStore on Redis.
type SessionStore struct {
	client client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore. A non-positive ttl selects
// auth.DefaultSessionTTL.
func NewSessionStore(c client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return &SessionStore{client: c, ttl: ttl}
}

func sessionKey(tokenHash string) string {
	return KeyPrefix + tokenHash
}

// Create implements auth.SessionStore. SETNX guards the token namespace:
// an existing key is never overwritten.
func (s *SessionStore) Create(ctx context.Context, userID ulid.ULID) (string, error) {
	token, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, sessionKey(hash), userID.String(), s.ttl).Result()
	if err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if !ok {
		return "", oops.Code("SESSION_TOKEN_COLLISION").
			With("user_id", userID.String()).
			Errorf("session token already in use")
	}
	return token, nil
}

// Resolve implements auth.SessionStore. Tokens that could not have been
// issued are rejected without a round trip.
func (s *SessionStore) Resolve(ctx context.Context, token string) (ulid.ULID, error) {
	if !auth.ValidSessionToken(token) {
		return ulid.ULID{}, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}

	val, err := s.client.Get(ctx, sessionKey(auth.HashSessionToken(token))).Result()
	if errors.Is(err, goredis.Nil) {
		return ulid.ULID{}, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_RESOLVE_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(val)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_CORRUPT").With("value", val).Wrap(err)
	}
	return id, nil
}

// Destroy implements auth.SessionStore.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if !auth.ValidSessionToken(token) {
		return nil
	}
	if err := s.client.Del(ctx, sessionKey(auth.HashSessionToken(token))).Err(); err != nil {
		return oops.Code("SESSION_DESTROY_FAILED").Wrap(err)
	}
	return nil
}

var _ auth.SessionStore = (*SessionStore)(nil)
