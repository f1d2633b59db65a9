// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectBackoff controls how long WaitReady keeps retrying.
type ConnectBackoff struct {
	Base       time.Duration
	MaxRetries uint64
}

// DefaultConnectBackoff retries for roughly half a minute.
var DefaultConnectBackoff = ConnectBackoff{Base: 250 * time.Millisecond, MaxRetries: 7}

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// OpenPool creates a pgx pool for databaseURL and blocks until the server
// answers a ping, retrying with exponential backoff.
func OpenPool(ctx context.Context, databaseURL string, backoff ConnectBackoff, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DATABASE_CONFIG_INVALID").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DATABASE_CONNECT_FAILED").
			With("host", cfg.ConnConfig.Host).
			Wrap(err)
	}

	if err := WaitReady(ctx, "postgres", pool, backoff, logger); err != nil {
		pool.Close()
		return nil, oops.With("host", cfg.ConnConfig.Host).Wrap(err)
	}
	return pool, nil
}

// WaitReady pings p until it succeeds, ctx ends or the retry budget is spent.
// name identifies the dependency in logs and errors.
func WaitReady(ctx context.Context, name string, p Pinger, backoff ConnectBackoff, logger *slog.Logger) error {
	b := retry.WithMaxRetries(backoff.MaxRetries, retry.NewExponential(backoff.Base))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := p.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "dependency not ready", "dependency", name, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DEPENDENCY_UNAVAILABLE").
			With("dependency", name).
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
