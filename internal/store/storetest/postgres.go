// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package storetest starts disposable PostgreSQL and Redis containers for
// integration tests.
package storetest

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lireddit/lireddit/internal/store"
)

// Postgres is a running, migrated database container.
type Postgres struct {
	URL       string
	Pool      *pgxpool.Pool
	container *postgres.PostgresContainer
}

// StartPostgres runs a postgres container, applies all migrations, and opens
// a pool against it.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lireddit_test"),
		postgres.WithUsername("lireddit"),
		postgres.WithPassword("lireddit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.Code("TEST_POSTGRES_START_FAILED").Wrap(err)
	}

	pg := &Postgres{container: container}
	if err := pg.init(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return pg, nil
}

func (p *Postgres) init(ctx context.Context) error {
	connStr, err := p.container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return oops.Code("TEST_POSTGRES_START_FAILED").With("operation", "connection string").Wrap(err)
	}
	p.URL = connStr

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()
	if err := migrator.Up(); err != nil {
		return err
	}

	pool, err := store.OpenPool(ctx, connStr, store.DefaultConnectBackoff, slog.Default())
	if err != nil {
		return err
	}
	p.Pool = pool
	return nil
}

// Terminate closes the pool and removes the container.
func (p *Postgres) Terminate(ctx context.Context) {
	if p.Pool != nil {
		p.Pool.Close()
	}
	_ = p.container.Terminate(ctx)
}
