// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lireddit/lireddit/pkg/errutil"
)

type fakeMigrator struct {
	url       string
	upCalls   int
	downCalls int
	steps     []int
	forced    []int
	version   uint
	dirty     bool
	pending   []uint
	err       error
	closed    bool
}

func (m *fakeMigrator) Up() error { m.upCalls++; return m.err }
func (m *fakeMigrator) Down() error { m.downCalls++; return m.err }
func (m *fakeMigrator) Steps(n int) error { m.steps = append(m.steps, n); return m.err }
func (m *fakeMigrator) Force(v int) error { m.forced = append(m.forced, v); return m.err }
func (m *fakeMigrator) Close() error { m.closed = true; return nil }
func (m *fakeMigrator) PendingMigrations() ([]uint, error) { return m.pending, m.err }
func (m *fakeMigrator) Version() (uint, bool, error) { return m.version, m.dirty, m.err }

func runMigrate(t *testing.T, m *fakeMigrator, env map[string]string, args ...string) (string, error) {
	t.Helper()
	configFile = ""
	cmd := newMigrateCmdWithDeps(&MigrateDeps{
		MigratorFactory: func(url string) (Migrator, error) {
			m.url = url
			return m, nil
		},
		Getenv: func(k string) string { return env[k] },
	})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

var testEnv = map[string]string{"DATABASE_URL": "postgres://env/db"}

func TestMigrateUp(t *testing.T) {
	m := &fakeMigrator{}

	out, err := runMigrate(t, m, testEnv, "up")

	require.NoError(t, err)
	assert.Equal(t, 1, m.upCalls)
	assert.True(t, m.closed)
	assert.Equal(t, "postgres://env/db", m.url)
	assert.Contains(t, out, "Migrations completed successfully")
}

func TestMigrateUp_FlagOverridesEnv(t *testing.T) {
	m := &fakeMigrator{}

	_, err := runMigrate(t, m, testEnv, "up", "--database-url", "postgres://flag/db")

	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", m.url)
}

func TestMigrateUp_RequiresDatabaseURL(t *testing.T) {
	m := &fakeMigrator{}

	_, err := runMigrate(t, m, nil, "up")

	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Zero(t, m.upCalls)
}

func TestMigrateDown(t *testing.T) {
	t.Run("defaults to one step", func(t *testing.T) {
		m := &fakeMigrator{}
		_, err := runMigrate(t, m, testEnv, "down")
		require.NoError(t, err)
		assert.Equal(t, []int{-1}, m.steps)
	})

	t.Run("explicit steps", func(t *testing.T) {
		m := &fakeMigrator{}
		_, err := runMigrate(t, m, testEnv, "down", "2")
		require.NoError(t, err)
		assert.Equal(t, []int{-2}, m.steps)
	})

	t.Run("all", func(t *testing.T) {
		m := &fakeMigrator{}
		_, err := runMigrate(t, m, testEnv, "down", "--all")
		require.NoError(t, err)
		assert.Equal(t, 1, m.downCalls)
		assert.Empty(t, m.steps)
	})

	t.Run("invalid steps", func(t *testing.T) {
		m := &fakeMigrator{}
		_, err := runMigrate(t, m, testEnv, "down", "0")
		errutil.AssertErrorCode(t, err, "INVALID_STEPS")
		assert.Empty(t, m.steps)
	})
}

func TestMigrateVersion(t *testing.T) {
	m := &fakeMigrator{version: 1, pending: []uint{2}}

	out, err := runMigrate(t, m, testEnv, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 1 (000001_create_users)")
	assert.Contains(t, out, "Pending: 000002_create_posts")
}

func TestMigrateVersion_Dirty(t *testing.T) {
	m := &fakeMigrator{version: 2, dirty: true}

	out, err := runMigrate(t, m, testEnv, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "dirty")
	assert.Contains(t, out, "No pending migrations")
}

func TestMigrateForce(t *testing.T) {
	m := &fakeMigrator{}

	_, err := runMigrate(t, m, testEnv, "force", "2")

	require.NoError(t, err)
	assert.Equal(t, []int{2}, m.forced)
}

func TestMigrate_PropagatesStoreError(t *testing.T) {
	m := &fakeMigrator{err: errors.New("boom")}

	_, err := runMigrate(t, m, testEnv, "up")

	require.Error(t, err)
	assert.True(t, m.closed)
}

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantErr     bool
	}{
		{name: "valid integer", input: "3", wantVersion: 3},
		{name: "zero is valid", input: "0", wantVersion: 0},
		{name: "leading whitespace is handled", input: "  42", wantVersion: 42},
		{name: "negative parses", input: "-1", wantVersion: -1},
		{name: "non-numeric", input: "abc", wantErr: true},
		{name: "trailing chars", input: "3abc", wantErr: true},
		{name: "float", input: "1.5", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parseForceVersion(tt.input)

			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "INVALID_VERSION")
				assert.Equal(t, 0, version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}
