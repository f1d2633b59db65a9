// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

import (
	"context"
	"runtime"

	"github.com/samber/oops"
	"golang.org/x/sync/semaphore"
)

// HashPool runs PasswordHasher work on a bounded number of goroutines.
//
// Each argon2id computation holds 64 MB for its duration, so the pool size
// also bounds peak hashing memory. Callers block until a worker slot is free
// and the hash completes, or until their context ends.
type HashPool struct {
	hasher PasswordHasher
	sem    *semaphore.Weighted
	size   int
}

// DefaultHashWorkers returns the pool size used when none is configured.
func DefaultHashWorkers() int {
	return max(1, runtime.GOMAXPROCS(0)/2)
}

// NewHashPool creates a HashPool with the given number of workers.
// A non-positive worker count selects DefaultHashWorkers.
func NewHashPool(hasher PasswordHasher, workers int) (*HashPool, error) {
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_HASH_POOL").Errorf("password hasher is required")
	}
	if workers <= 0 {
		workers = DefaultHashWorkers()
	}
	return &HashPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(workers)),
		size:   workers,
	}, nil
}

// Size returns the number of workers.
func (p *HashPool) Size() int {
	return p.size
}

// Hash hashes password on a pool worker.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	var hash string
	err := p.run(ctx, "hash", func() error {
		var err error
		hash, err = p.hasher.Hash(password)
		return err //nolint:wrapcheck // hasher errors carry their own oops codes
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}

// Verify checks password against hash on a pool worker.
func (p *HashPool) Verify(ctx context.Context, password, hash string) (bool, error) {
	var ok bool
	err := p.run(ctx, "verify", func() error {
		var err error
		ok, err = p.hasher.Verify(password, hash)
		return err //nolint:wrapcheck // hasher errors carry their own oops codes
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// run acquires a worker slot and executes fn on its own goroutine. If ctx
// ends first, run returns immediately; the worker finishes in the background
// and releases its slot when done. Results of abandoned work are discarded.
func (p *HashPool) run(ctx context.Context, op string, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return oops.Code("AUTH_HASH_CANCELLED").
			With("operation", op).
			Wrap(err)
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return oops.Code("AUTH_HASH_CANCELLED").
			With("operation", op).
			Wrap(ctx.Err())
	}
}
