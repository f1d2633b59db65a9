// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lireddit/lireddit/internal/config"
	"github.com/lireddit/lireddit/internal/store"
)

// MigrateDeps contains injectable dependencies for the migrate command.
type MigrateDeps struct {
	// MigratorFactory creates a migrator from a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// Getenv reads environment variables.
	// Default: os.Getenv
	Getenv func(string) string
}

func (d *MigrateDeps) withDefaults() *MigrateDeps {
	out := MigrateDeps{}
	if d != nil {
		out = *d
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	return &out
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmdWithDeps(nil)
}

func newMigrateCmdWithDeps(deps *MigrateDeps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, roll back or inspect the embedded database migrations.
The database URL comes from --database-url, the config file, or DATABASE_URL.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL URL (default: $"+config.DatabaseURLEnv+")")

	var all bool
	down := &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				parsed, err := parseSteps(args[0])
				if err != nil {
					return err
				}
				n = parsed
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if all {
					if err := m.Down(); err != nil {
						return err //nolint:wrapcheck // store errors carry codes
					}
					cmd.Println("All migrations rolled back")
					return nil
				}
				if err := m.Steps(-n); err != nil {
					return err //nolint:wrapcheck // store errors carry codes
				}
				cmd.Printf("Rolled back %d migration(s)\n", n)
				return nil
			})
		},
	}
	down.Flags().BoolVar(&all, "all", false, "roll back every migration")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					cmd.Println("Running migrations...")
					if err := m.Up(); err != nil {
						return err //nolint:wrapcheck // store errors carry codes
					}
					cmd.Println("Migrations completed successfully")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied migration version and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied without running it (dirty-state recovery)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseForceVersion(args[0])
				if err != nil {
					return err
				}
				return withMigrator(cmd, deps, func(m Migrator) error {
					if err := m.Force(v); err != nil {
						return err //nolint:wrapcheck // store errors carry codes
					}
					cmd.Printf("Forced version %d\n", v)
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *MigrateDeps, fn func(Migrator) error) error {
	url, err := getDatabaseURL(cmd, deps.Getenv)
	if err != nil {
		return err
	}

	m, err := deps.MigratorFactory(url)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	return fn(m)
}

// getDatabaseURL resolves the database URL from flags, the config file and
// the environment.
func getDatabaseURL(cmd *cobra.Command, getenv func(string) string) (string, error) {
	path, err := config.ResolvePath(configFile, getenv)
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(path, cmd.Flags(), getenv)
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").
			Errorf("--database-url or %s is required", config.DatabaseURLEnv)
	}
	return cfg.DatabaseURL, nil
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}
	name, err := store.MigrationName(v)
	if err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}
	if name == "" {
		name = "none"
	}
	cmd.Printf("Current version: %d (%s)\n", v, name)
	if dirty {
		cmd.Println("WARNING: database is dirty; repair it and run 'migrate force VERSION'")
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry codes
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	names := make([]string, 0, len(pending))
	for _, p := range pending {
		n, err := store.MigrationName(p)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry codes
		}
		names = append(names, n)
	}
	cmd.Printf("Pending: %s\n", strings.Join(names, ", "))
	return nil
}

// parseForceVersion parses a migration version for force. Negative values
// are rejected by the migrator.
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrap(err)
	}
	return v, nil
}

func parseSteps(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, oops.Code("INVALID_STEPS").With("input", s).Errorf("steps must be a positive integer, got %q", s)
	}
	return n, nil
}

