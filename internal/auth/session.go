// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes = 32                   // 32 bytes = 64 hex chars
	DefaultSessionTTL = 365 * 24 * time.Hour // one year
	SessionCookieName = "qid"
)

// SessionStore maps opaque session tokens to user IDs.
//
// Implementations store only HashSessionToken(token), never the token itself,
// and must expire sessions after their TTL without caller involvement.
type SessionStore interface {
	// Create issues a new token bound to userID.
	Create(ctx context.Context, userID ulid.ULID) (string, error)

	// Resolve returns the user ID bound to token. Returns an error wrapping
	// ErrNotFound if the token is unknown or expired.
	Resolve(ctx context.Context, token string) (ulid.ULID, error)

	// Destroy removes the session. Destroying an unknown token is not an error.
	Destroy(ctx context.Context, token string) error
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; the hash is the storage key.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// ValidSessionToken reports whether token has the shape produced by
// GenerateSessionToken. Stores use it to skip lookups for garbage input.
func ValidSessionToken(token string) bool {
	if len(token) != SessionTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
