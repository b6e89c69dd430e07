// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// AuthAttemptRepository implements auth.AuthAttemptRepository using
// PostgreSQL. Rows are append-only; the only mutation is retention pruning.
type AuthAttemptRepository struct {
	db DB
}

// NewAuthAttemptRepository creates a new AuthAttemptRepository.
func NewAuthAttemptRepository(db DB) *AuthAttemptRepository {
	return &AuthAttemptRepository{db: db}
}

// Create appends a failed attempt.
func (r *AuthAttemptRepository) Create(ctx context.Context, attempt *auth.AuthAttempt) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_attempts (id, ip, username, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		attempt.ID.String(),
		attempt.IP,
		attempt.Username,
		attempt.CreatedAt,
	)
	if err != nil {
		return oops.Code("ATTEMPT_CREATE_FAILED").
			With("operation", "insert auth_attempt").
			With("ip", attempt.IP).
			Wrap(err)
	}
	return nil
}

// CountSince returns the ip-only, username-only, and exact-pair failure
// counts for attempts at or after the given time, in one round trip.
func (r *AuthAttemptRepository) CountSince(ctx context.Context, since time.Time, ip, username string) (auth.AttemptCounts, error) {
	row := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE ip = $2)                     AS by_ip,
			COUNT(*) FILTER (WHERE username = $3)               AS by_username,
			COUNT(*) FILTER (WHERE ip = $2 AND username = $3)   AS by_pair
		FROM auth_attempts
		WHERE created_at >= $1
	`, since, ip, username)

	var counts auth.AttemptCounts
	if err := row.Scan(&counts.ByIP, &counts.ByUsername, &counts.ByPair); err != nil {
		return auth.AttemptCounts{}, oops.Code("ATTEMPT_COUNT_FAILED").
			With("operation", "count auth_attempts").
			Wrap(err)
	}
	return counts, nil
}

// DeleteOlderThan removes attempts created before the cutoff and returns the
// number of deleted rows.
func (r *AuthAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM auth_attempts WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("ATTEMPT_PRUNE_FAILED").
			With("operation", "delete old auth_attempts").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.AuthAttemptRepository = (*AuthAttemptRepository)(nil)
