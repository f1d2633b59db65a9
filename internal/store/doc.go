// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package store owns the PostgreSQL connection pool and the embedded schema
// migrations.
package store
