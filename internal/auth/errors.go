// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned by UserRepository.Create when the normalized
// username is already in use.
var ErrUsernameTaken = errors.New("username already exists")
