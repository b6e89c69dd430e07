// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
)

func TestNewUser(t *testing.T) {
	const hash = "$argon2id$v=19$m=65536,t=1,p=4$salt$hash"

	t.Run("valid user", func(t *testing.T) {
		user, err := auth.NewUser("alice", "alice@example.com", hash, []string{"admin"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, hash, user.PasswordHash)
		assert.Equal(t, []string{"admin"}, user.Roles)
		assert.True(t, user.IsActive)
		assert.Nil(t, user.PendingReset)
		assert.NotEqual(t, ulid.ULID{}, user.ID)
	})

	t.Run("username and email are lowercased", func(t *testing.T) {
		user, err := auth.NewUser("  Alice ", "Alice@Example.COM", hash, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		_, err := auth.NewUser("alice", "not-an-email", hash, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("empty password hash rejected", func(t *testing.T) {
		_, err := auth.NewUser("alice", "alice@example.com", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password hash")
	})
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid lowercase", "alice", false},
		{"valid with underscore", "alice_b", false},
		{"valid with digits", "alice99", false},
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("a", auth.MaxUsernameLength), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", auth.MaxUsernameLength+1), true},
		{"starts with digit", "1alice", true},
		{"starts with underscore", "_alice", true},
		{"contains space", "ali ce", true},
		{"contains hyphen", "ali-ce", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPendingReset_IsLive(t *testing.T) {
	now := time.Now()

	t.Run("nil record is not live", func(t *testing.T) {
		var r *auth.PendingReset
		assert.False(t, r.IsLive(now))
	})

	t.Run("future expiry is live", func(t *testing.T) {
		r := &auth.PendingReset{TokenHash: "h", ExpiresAt: now.Add(time.Minute)}
		assert.True(t, r.IsLive(now))
	})

	t.Run("past expiry is not live", func(t *testing.T) {
		r := &auth.PendingReset{TokenHash: "h", ExpiresAt: now.Add(-time.Minute)}
		assert.False(t, r.IsLive(now))
	})

	t.Run("exact expiry instant is not live", func(t *testing.T) {
		r := &auth.PendingReset{TokenHash: "h", ExpiresAt: now}
		assert.False(t, r.IsLive(now))
	})
}
