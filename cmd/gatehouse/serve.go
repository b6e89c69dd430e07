// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// Timeout for the readiness probe's database ping.
const readinessPingTimeout = 2 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Gatehouse service process",
		Long: `Run the long-lived Gatehouse process: serves metrics and health
probes and prunes aged authentication attempts on a fixed interval.`,
		RunE: runServe,
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address")
	cmd.Flags().Duration("prune.interval", config.DefaultPruneInterval, "how often to prune aged auth attempts")
	cmd.Flags().Duration("prune.retention", config.DefaultRetention, "how long auth attempt rows are retained")

	return cmd
}

// addConfigFlags registers the flags shared by subcommands that load the
// full configuration. Flag names double as koanf paths.
func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("log-format", config.DefaultLogFormat, "log format (json or text)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("gatehouse", version, cfg.LogFormat)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(ctx, readinessPingTimeout)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	auth.RegisterMetrics(obsServer.Registry())
	obsErrChan, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.MetricsAddr).Wrap(err)
	}
	slog.Info("observability server started", "addr", obsServer.Addr())

	attempts := postgres.NewAuthAttemptRepository(pool)
	go runPruneLoop(ctx, attempts, obsServer.Metrics(), cfg.Prune)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Gatehouse service started")
	slog.Info("gatehouse ready",
		"metrics_addr", obsServer.Addr(),
		"prune_interval", cfg.Prune.Interval,
		"prune_retention", cfg.Prune.Retention,
	)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case err, ok := <-obsErrChan:
		if ok && err != nil {
			errutil.LogError(slog.Default(), "observability server failed", err)
			cancel()
		}
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// pruner is the subset of the attempt repository the prune loop needs.
type pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// runPruneLoop removes auth attempt rows older than the retention window on
// every tick until ctx is cancelled.
func runPruneLoop(ctx context.Context, attempts pruner, metrics *observability.Metrics, cfg config.Prune) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-cfg.Retention)
			pruned, err := attempts.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				errutil.LogError(slog.Default(), "failed to prune auth attempts", err)
				continue
			}
			metrics.AttemptsPruned.Add(float64(pruned))
			if pruned > 0 {
				slog.Info("pruned auth attempts", "count", pruned, "cutoff", cutoff)
			}
		}
	}
}
