// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/store"
)

// Default timeout for user commands.
const defaultUserTimeout = 30 * time.Second

// userConfig holds configuration for the user subcommands.
type userConfig struct {
	username string
	email    string
	password string
	roles    []string
	timeout  time.Duration
}

// NewUserCmd creates the user subcommand.
func NewUserCmd() *cobra.Command {
	cfg := &userConfig{}

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  `Create accounts and rotate passwords directly against the database.`,
	}

	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", defaultUserTimeout, "timeout for database operations (e.g., 30s, 1m)")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(cmd, args, cfg)
		},
	}
	createCmd.Flags().StringVar(&cfg.username, "username", "", "username for the new account")
	createCmd.Flags().StringVar(&cfg.email, "email", "", "email address for the new account")
	createCmd.Flags().StringVar(&cfg.password, "password", "", "initial password")
	createCmd.Flags().StringSliceVar(&cfg.roles, "role", nil, "role to grant (repeatable)")
	cmd.AddCommand(createCmd)

	setPasswordCmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserSetPassword(cmd, args, cfg)
		},
	}
	setPasswordCmd.Flags().StringVar(&cfg.username, "username", "", "username of the account")
	setPasswordCmd.Flags().StringVar(&cfg.password, "password", "", "new password")
	cmd.AddCommand(setPasswordCmd)

	return cmd
}

// userConnect resolves the database URL and opens a pool for user commands.
func userConnect(cmd *cobra.Command) (*pgxpool.Pool, error) {
	databaseURL, err := cmd.Flags().GetString("database-url")
	if err != nil {
		return nil, oops.Wrap(err)
	}
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("--database-url or DATABASE_URL is required")
	}

	pool, err := store.Connect(cmd.Context(), databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return pool, nil
}

func runUserCreate(cmd *cobra.Command, _ []string, cfg *userConfig) error {
	if cfg.username == "" || cfg.email == "" || cfg.password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--username, --email, and --password are required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, err := userConnect(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := auth.NewArgon2idHasher(auth.DefaultHasherParams())
	passwordHash, err := hasher.Hash(cfg.password)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := auth.NewUser(cfg.username, cfg.email, passwordHash, cfg.roles)
	if err != nil {
		return err
	}

	if err := postgres.NewUserRepository(pool).Create(ctx, user); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			cmd.Printf("User %q already exists, skipping\n", user.Username)
			return nil
		}
		return oops.Code("USER_CREATE_FAILED").With("username", user.Username).Wrap(err)
	}

	cmd.Printf("Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func runUserSetPassword(cmd *cobra.Command, _ []string, cfg *userConfig) error {
	if cfg.username == "" || cfg.password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--username and --password are required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, err := userConnect(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	user, err := users.GetByUsername(ctx, cfg.username)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("username", cfg.username).Wrap(err)
	}

	hasher := auth.NewArgon2idHasher(auth.DefaultHasherParams())
	passwordHash, err := hasher.Hash(cfg.password)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("operation", "hash password").Wrap(err)
	}

	if err := users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("username", user.Username).Wrap(err)
	}

	cmd.Printf("Password updated for %s\n", user.Username)
	return nil
}
