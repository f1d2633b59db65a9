// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package store

import (
	"errors"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lireddit/lireddit/pkg/errutil"
)

// fakeMigrate implements migrateIface with canned results.
type fakeMigrate struct {
	upErr, downErr, stepsErr, forceErr error
	versionVal                         uint
	dirty                              bool
	versionErr                         error
	closeSourceErr, closeDBErr         error

	stepsCalls []int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.stepsCalls = append(f.stepsCalls, n)
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.versionVal, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(int) error              { return f.forceErr }
func (f *fakeMigrate) Close() (error, error)        { return f.closeSourceErr, f.closeDBErr }

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/lireddit":   "pgx5://u:p@db:5432/lireddit",
		"postgresql://u:p@db:5432/lireddit": "pgx5://u:p@db:5432/lireddit",
		"pgx5://u:p@db:5432/lireddit":       "pgx5://u:p@db:5432/lireddit",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestMigrator_NoChangeIsSuccess(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{
		upErr:    migrate.ErrNoChange,
		downErr:  migrate.ErrNoChange,
		stepsErr: migrate.ErrNoChange,
	}}
	require.NoError(t, m.Up())
	require.NoError(t, m.Down())
	require.NoError(t, m.Steps(-1))
}

func TestMigrator_Errors(t *testing.T) {
	boom := errors.New("database locked")
	m := &Migrator{m: &fakeMigrate{
		upErr:      boom,
		downErr:    boom,
		stepsErr:   boom,
		forceErr:   boom,
		versionErr: boom,
	}}

	tests := []struct {
		name string
		call func() error
		code string
	}{
		{"up", m.Up, "MIGRATION_UP_FAILED"},
		{"down", m.Down, "MIGRATION_DOWN_FAILED"},
		{"steps", func() error { return m.Steps(2) }, "MIGRATION_STEPS_FAILED"},
		{"force", func() error { return m.Force(1) }, "MIGRATION_FORCE_FAILED"},
		{"force negative", func() error { return m.Force(-1) }, "MIGRATION_INVALID_VERSION"},
		{"version", func() error { _, _, err := m.Version(); return err }, "MIGRATION_VERSION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestMigrator_StepsZeroSkipsDriver(t *testing.T) {
	f := &fakeMigrate{}
	m := &Migrator{m: f}
	require.NoError(t, m.Steps(0))
	assert.Empty(t, f.stepsCalls)
}

func TestMigrator_Version(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionVal: 2, dirty: true}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), v)
		assert.True(t, dirty)
	})

	t.Run("fresh database", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name      string
		src, db   error
		component string
	}{
		{"source", errors.New("source close failed"), nil, "source"},
		{"database", nil, errors.New("db close failed"), "database"},
		{"both", errors.New("source close failed"), errors.New("db close failed"), "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{closeSourceErr: tt.src, closeDBErr: tt.db}}
			err := m.Close()
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
			if tt.src != nil {
				assert.Contains(t, err.Error(), "source close failed")
			}
			if tt.db != nil {
				assert.Contains(t, err.Error(), "db close failed")
			}
		})
	}

	require.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())
}

func TestMigrator_PendingMigrations(t *testing.T) {
	t.Run("fresh database", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Equal(t, []uint{1, 2}, pending)
	})

	t.Run("partially applied", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionVal: 1}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Equal(t, []uint{2}, pending)
	})

	t.Run("up to date", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionVal: 2}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("version error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}
		_, err := m.PendingMigrations()
		errutil.AssertErrorContext(t, err, "operation", "get pending migrations")
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	ups, downs := 0, 0
	for _, e := range entries {
		assert.Regexp(t, pattern, e.Name())
		if regexp.MustCompile(`\.up\.sql$`).MatchString(e.Name()) {
			ups++
		} else {
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every migration needs a down file")

	latest, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	name, err := MigrationName(1)
	require.NoError(t, err)
	assert.Equal(t, "000001_create_users", name)

	name, err = MigrationName(99)
	require.NoError(t, err)
	assert.Empty(t, name)
}
