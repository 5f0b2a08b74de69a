// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the rbacd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rbacd",
		Short: "rbacd - credential authentication and RBAC service",
		Long: `rbacd registers users, issues and verifies signed bearer tokens,
throttles login attempts, and enforces per-route role allow-lists.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
