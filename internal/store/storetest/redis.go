// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package storetest

import (
	"context"

	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis is a running redis container.
type Redis struct {
	Addr      string
	container testcontainers.Container
}

// StartRedis runs a redis container and returns its host:port.
func StartRedis(ctx context.Context) (*Redis, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		return nil, oops.Code("TEST_REDIS_START_FAILED").Wrap(err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, oops.Code("TEST_REDIS_START_FAILED").With("operation", "endpoint").Wrap(err)
	}
	return &Redis{Addr: endpoint, container: container}, nil
}

// Terminate removes the container.
func (r *Redis) Terminate(ctx context.Context) {
	_ = r.container.Terminate(ctx)
}
