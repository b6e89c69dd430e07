// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
)

func TestAuthAttemptRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("appends attempt", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		attempt, err := auth.NewAuthAttempt("10.0.0.1", "alice")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO auth_attempts").
			WithArgs(attempt.ID.String(), attempt.IP, attempt.Username, attempt.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, postgres.NewAuthAttemptRepository(mock).Create(ctx, attempt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error propagates", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		attempt, err := auth.NewAuthAttempt("10.0.0.1", "alice")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO auth_attempts").
			WithArgs(attempt.ID.String(), attempt.IP, attempt.Username, attempt.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		assert.Error(t, postgres.NewAuthAttemptRepository(mock).Create(ctx, attempt))
	})
}

func TestAuthAttemptRepository_CountSince(t *testing.T) {
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	t.Run("returns the three counts from one query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"by_ip", "by_username", "by_pair"}).
			AddRow(int64(12), int64(5), int64(3))
		mock.ExpectQuery("SELECT(.|\\s)+FROM auth_attempts").
			WithArgs(since, "10.0.0.1", "alice").
			WillReturnRows(rows)

		counts, err := postgres.NewAuthAttemptRepository(mock).CountSince(ctx, since, "10.0.0.1", "alice")
		require.NoError(t, err)
		assert.Equal(t, auth.AttemptCounts{ByIP: 12, ByUsername: 5, ByPair: 3}, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error propagates", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT(.|\\s)+FROM auth_attempts").
			WithArgs(since, "10.0.0.1", "alice").
			WillReturnError(errors.New("connection refused"))

		counts, err := postgres.NewAuthAttemptRepository(mock).CountSince(ctx, since, "10.0.0.1", "alice")
		require.Error(t, err)
		assert.Equal(t, auth.AttemptCounts{}, counts)
	})
}

func TestAuthAttemptRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	t.Run("returns deleted row count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM auth_attempts").
			WithArgs(cutoff).
			WillReturnResult(pgxmock.NewResult("DELETE", 42))

		deleted, err := postgres.NewAuthAttemptRepository(mock).DeleteOlderThan(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(42), deleted)
	})

	t.Run("delete error propagates", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM auth_attempts").
			WithArgs(cutoff).
			WillReturnError(errors.New("connection refused"))

		deleted, err := postgres.NewAuthAttemptRepository(mock).DeleteOlderThan(ctx, cutoff)
		require.Error(t, err)
		assert.Zero(t, deleted)
	})
}
