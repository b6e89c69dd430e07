// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/mocks"
)

func TestNewAuthAttempt(t *testing.T) {
	t.Run("valid attempt", func(t *testing.T) {
		attempt, err := auth.NewAuthAttempt("192.168.1.1", "alice")
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.1", attempt.IP)
		assert.Equal(t, "alice", attempt.Username)
		assert.False(t, attempt.CreatedAt.IsZero())
	})

	t.Run("empty ip rejected", func(t *testing.T) {
		_, err := auth.NewAuthAttempt("", "alice")
		assert.Error(t, err)
	})

	t.Run("empty username rejected", func(t *testing.T) {
		_, err := auth.NewAuthAttempt("192.168.1.1", "")
		assert.Error(t, err)
	})
}

func TestNewDetector_NilRepository(t *testing.T) {
	detector, err := auth.NewDetector(nil, auth.DefaultConfig())
	require.Error(t, err)
	assert.Nil(t, detector)
}

func TestDetector_RecordFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("appends attempt row", func(t *testing.T) {
		repo := mocks.NewMockAuthAttemptRepository(t)
		detector, err := auth.NewDetector(repo, auth.DefaultConfig())
		require.NoError(t, err)

		repo.On("Create", ctx, mock.AnythingOfType("*auth.AuthAttempt")).
			Run(func(args mock.Arguments) {
				attempt := args.Get(1).(*auth.AuthAttempt)
				assert.Equal(t, "10.0.0.1", attempt.IP)
				assert.Equal(t, "alice", attempt.Username)
			}).
			Return(nil)

		require.NoError(t, detector.RecordFailure(ctx, "10.0.0.1", "alice"))
	})

	t.Run("store error propagates", func(t *testing.T) {
		repo := mocks.NewMockAuthAttemptRepository(t)
		detector, err := auth.NewDetector(repo, auth.DefaultConfig())
		require.NoError(t, err)

		repo.On("Create", ctx, mock.AnythingOfType("*auth.AuthAttempt")).
			Return(errors.New("connection lost"))

		assert.Error(t, detector.RecordFailure(ctx, "10.0.0.1", "alice"))
	})
}

func TestDetector_IsAbusive(t *testing.T) {
	ctx := context.Background()

	cfg := auth.Config{
		AbuseWindow:            time.Hour,
		MaxAttemptsPerPair:     10,
		MaxAttemptsPerIP:       50,
		MaxAttemptsPerUsername: 7,
	}

	tests := []struct {
		name   string
		counts auth.AttemptCounts
		want   bool
	}{
		{"no attempts", auth.AttemptCounts{}, false},
		{"below all limits", auth.AttemptCounts{ByIP: 49, ByUsername: 6, ByPair: 9}, false},
		{"pair at limit", auth.AttemptCounts{ByIP: 9, ByUsername: 6, ByPair: 10}, true},
		{"ip at limit", auth.AttemptCounts{ByIP: 50, ByUsername: 6, ByPair: 9}, true},
		{"username at limit", auth.AttemptCounts{ByIP: 9, ByUsername: 7, ByPair: 6}, true},
		{"all over limit", auth.AttemptCounts{ByIP: 100, ByUsername: 100, ByPair: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAuthAttemptRepository(t)
			detector, err := auth.NewDetector(repo, cfg)
			require.NoError(t, err)

			repo.On("CountSince", ctx, mock.AnythingOfType("time.Time"), "10.0.0.1", "alice").
				Return(tt.counts, nil)

			abusive, err := detector.IsAbusive(ctx, "10.0.0.1", "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, abusive)
		})
	}

	t.Run("window start passed to repository", func(t *testing.T) {
		repo := mocks.NewMockAuthAttemptRepository(t)
		detector, err := auth.NewDetector(repo, cfg)
		require.NoError(t, err)

		before := time.Now().Add(-cfg.AbuseWindow)
		repo.On("CountSince", ctx, mock.MatchedBy(func(since time.Time) bool {
			return !since.Before(before) && since.Before(time.Now())
		}), "10.0.0.1", "alice").Return(auth.AttemptCounts{}, nil)

		_, err = detector.IsAbusive(ctx, "10.0.0.1", "alice")
		require.NoError(t, err)
	})

	t.Run("store failure returns error, never false negative", func(t *testing.T) {
		repo := mocks.NewMockAuthAttemptRepository(t)
		detector, err := auth.NewDetector(repo, cfg)
		require.NoError(t, err)

		repo.On("CountSince", ctx, mock.AnythingOfType("time.Time"), "10.0.0.1", "alice").
			Return(auth.AttemptCounts{}, errors.New("connection lost"))

		abusive, err := detector.IsAbusive(ctx, "10.0.0.1", "alice")
		require.Error(t, err)
		assert.False(t, abusive)
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	// Zero config through NewDetector picks up every default; verified
	// indirectly via the pair limit.
	repo := mocks.NewMockAuthAttemptRepository(t)
	detector, err := auth.NewDetector(repo, auth.Config{})
	require.NoError(t, err)

	ctx := context.Background()
	repo.On("CountSince", ctx, mock.AnythingOfType("time.Time"), "10.0.0.1", "alice").
		Return(auth.AttemptCounts{ByPair: auth.DefaultMaxAttemptsPerPair}, nil)

	abusive, err := detector.IsAbusive(ctx, "10.0.0.1", "alice")
	require.NoError(t, err)
	assert.True(t, abusive)
}
