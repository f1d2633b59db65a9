// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	goredis "github.com/redis/go-redis/v9"

	authredis "github.com/lireddit/lireddit/internal/auth/redis"
	"github.com/lireddit/lireddit/internal/observability"
	"github.com/lireddit/lireddit/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseOpener connects to PostgreSQL.
	// Default: store.OpenPool
	DatabaseOpener func(ctx context.Context, url string, logger *slog.Logger) (Database, error)

	// MigratorFactory creates a migrator for auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// RedisOpener connects to Redis when redis_addr is set.
	// Default: authredis.Open
	RedisOpener func(ctx context.Context, opts authredis.Options, logger *slog.Logger) (RedisClient, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// LogWriter receives log output.
	// Default: os.Stderr
	LogWriter io.Writer

	// Ready is called with the API address once it accepts requests.
	Ready func(apiAddr string)
}

// Database wraps the pgxpool.Pool methods used by serve and the repositories.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// RedisClient wraps the goredis.Client methods used by serve and the
// session store.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// AutoMigrator wraps the store.Migrator methods used on startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// Migrator wraps the store.Migrator methods used by the migrate command.
type Migrator interface {
	AutoMigrator
	Steps(n int) error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.DatabaseOpener == nil {
		out.DatabaseOpener = func(ctx context.Context, url string, logger *slog.Logger) (Database, error) {
			return store.OpenPool(ctx, url, store.DefaultConnectBackoff, logger)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.RedisOpener == nil {
		out.RedisOpener = func(ctx context.Context, opts authredis.Options, logger *slog.Logger) (RedisClient, error) {
			return authredis.Open(ctx, opts, store.DefaultConnectBackoff, logger)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, ready)
		}
	}
	return &out
}
