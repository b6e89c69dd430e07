// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// dummyKeyHash is compared against when no live reset record exists, so a
// miss costs the same as a wrong key. It is the hash of the empty string and
// matches no generated key.
const dummyKeyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Mailer delivers a plaintext reset key out of band. Delivery is an external
// collaborator; the auth core never persists or logs the key.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, key string) error
}

// PasswordResetService drives the forgot/reset flow: issue a single-use,
// time-limited key bound to a user, later validate and consume it to set a
// new password.
type PasswordResetService struct {
	users  UserRepository
	hasher PasswordHasher
	mailer Mailer
	cfg    Config
	logger *slog.Logger
}

// NewPasswordResetService creates a PasswordResetService. Logger defaults to
// slog.Default(); everything else is required.
func NewPasswordResetService(users UserRepository, hasher PasswordHasher, mailer Mailer, cfg Config, logger *slog.Logger) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("mailer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordResetService{
		users:  users,
		hasher: hasher,
		mailer: mailer,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}, nil
}

// RequestReset issues a reset key for the account behind the email. An
// unknown email still returns nil: the caller's acknowledgment must not
// reveal whether the address is registered. A prior pending reset is
// overwritten, so only the latest key is ever valid.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Anti-enumeration: report success without issuing anything.
			return nil
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	key, keyHash, err := GenerateKey()
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset key").
			Wrap(err)
	}

	expiresAt := time.Now().Add(s.cfg.ResetWindow)
	if err := s.users.SetPendingReset(ctx, user.ID, keyHash, expiresAt); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "store pending reset").
			Wrap(err)
	}

	if err := s.mailer.SendPasswordReset(ctx, email, key); err != nil {
		return oops.Code("RESET_DELIVERY_FAILED").
			With("operation", "send reset email").
			Wrap(err)
	}

	ResetRequests.WithLabelValues(ResetStageRequested).Inc()
	return nil
}

// Validate finds the user behind the email whose pending reset is still live
// and whose stored hash matches the presented key. Missing user, missing or
// expired reset record, and wrong key all return the same
// ErrInvalidCredentials so the caller cannot tell which stage failed.
func (s *PasswordResetService) Validate(ctx context.Context, email, key string) (*User, error) {
	email = strings.ToLower(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn the compare anyway so the miss costs the same.
			VerifyKey(key, dummyKeyHash)
			return nil, oops.Code("RESET_INVALID").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	if !user.PendingReset.IsLive(time.Now()) {
		VerifyKey(key, dummyKeyHash)
		return nil, oops.Code("RESET_INVALID").Wrap(ErrInvalidCredentials)
	}

	if !VerifyKey(key, user.PendingReset.TokenHash) {
		return nil, oops.Code("RESET_INVALID").Wrap(ErrInvalidCredentials)
	}

	return user, nil
}

// Reset validates the (email, key) pair and consumes it: the new password
// hash is set and the pending reset cleared in one atomic update, so a reset
// record never survives a successful password change.
func (s *PasswordResetService) Reset(ctx context.Context, email, key, newPassword string) error {
	user, err := s.Validate(ctx, email, key)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.users.ConsumeReset(ctx, user.ID, passwordHash); err != nil {
		return oops.Code("RESET_FAILED").
			With("operation", "consume reset").
			Wrap(err)
	}

	ResetRequests.WithLabelValues(ResetStageCompleted).Inc()
	s.logger.Info("password reset completed", "user_id", user.ID.String())
	return nil
}
