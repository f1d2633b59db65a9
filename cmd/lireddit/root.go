// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the lireddit CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lireddit",
		Short: "lireddit - accounts, sessions and posts over HTTP",
		Long: `lireddit serves account registration, cookie-based sessions
and user-owned posts from PostgreSQL, with sessions optionally held in Redis.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML, default: $XDG_CONFIG_HOME/lireddit/config.yaml if present)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
