// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
)

// Default timeout for the prune command.
const defaultPruneTimeout = 2 * time.Minute

// pruneConfig holds configuration for the prune command.
type pruneConfig struct {
	retention time.Duration
	timeout   time.Duration
}

// NewPruneCmd creates the prune subcommand.
func NewPruneCmd() *cobra.Command {
	cfg := &pruneConfig{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune aged authentication attempts",
		Long: `Delete authentication attempt rows older than the retention window.
The serve process does this on an interval; prune runs a single pass.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, args, cfg)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.Flags().DurationVar(&cfg.retention, "retention", config.DefaultRetention, "how long auth attempt rows are retained")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultPruneTimeout, "timeout for database operations")

	return cmd
}

func runPrune(cmd *cobra.Command, _ []string, cfg *pruneConfig) error {
	if cfg.retention <= 0 {
		return oops.Code("CONFIG_INVALID").With("retention", cfg.retention).
			Errorf("retention must be positive")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, err := userConnect(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	cutoff := time.Now().UTC().Add(-cfg.retention)
	pruned, err := postgres.NewAuthAttemptRepository(pool).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return oops.Code("PRUNE_FAILED").With("cutoff", cutoff).Wrap(err)
	}

	cmd.Printf("Pruned %d auth attempts older than %s\n", pruned, cutoff.Format(time.RFC3339))
	return nil
}
