// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package auth provides registration, login and session-bound identity
// resolution for LiReddit.
//
// # Domain Types
//
// Users should be created with NewUser, which normalizes the username and
// stamps the identifier and timestamps. Direct struct initialization bypasses
// that normalization and may create a user that can never log in.
//
// # Results
//
// Service operations never return an error for an expected failure. Bad
// input, duplicate usernames, unknown users and wrong passwords come back as
// a Result carrying FieldError entries. Only the Me operation distinguishes
// "no identity" (nil Result) from a resolved user.
//
// # Collaborators
//
// The Service is built from three collaborators:
//   - UserRepository - user persistence; owns the username uniqueness rule
//   - SessionStore - opaque session token to user ID mapping with a TTL
//   - PasswordHasher - argon2id hashing, usually wrapped in a HashPool
//
// Implementations live in the postgres, redis and memory subpackages.
package auth
