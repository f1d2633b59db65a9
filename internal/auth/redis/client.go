// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lireddit/lireddit/internal/store"
)

// Options selects the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to Redis and waits until it answers PING.
func Open(ctx context.Context, opts Options, backoff store.ConnectBackoff, logger *slog.Logger) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ping := store.PingFunc(func(ctx context.Context) error {
		return c.Ping(ctx).Err()
	})
	if err := store.WaitReady(ctx, "redis", ping, backoff, logger); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
