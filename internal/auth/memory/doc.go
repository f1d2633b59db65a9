// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package memory provides in-process implementations of the auth stores.
// They back the server when no Redis address is configured and serve as
// fakes in tests.
package memory
