// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is verified when a user doesn't exist so that unknown
// usernames cost the same as wrong passwords. It will never match any
// password.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// LoginResult is what a successful login hands back to the transport layer.
// Key appears only here; it is never persisted. User is the public
// projection so stored hashes cannot leak through a marshaled result.
type LoginResult struct {
	User       PublicUser
	Session    *Session
	Key        string
	AuthHeader string
}

// Service coordinates the login flow: abuse gate, credential check, failure
// recording, session creation.
type Service struct {
	users    UserRepository
	sessions *SessionManager
	detector *Detector
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewService creates a Service. All dependencies are required except logger,
// which defaults to slog.Default().
func NewService(users UserRepository, sessions *SessionManager, detector *Detector, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("user repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session manager is required")
	}
	if detector == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("abuse detector is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		detector: detector,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// FindByCredentials looks up an active user by username and verifies the
// password. Unknown username, inactive account, and wrong password are
// indistinguishable to the caller: all return ErrInvalidCredentials, and a
// dummy hash is verified when no usable record exists so the timing stays
// constant. No side effects; the caller owns attempt recording.
func (s *Service) FindByCredentials(ctx context.Context, username, password string) (*User, error) {
	username = strings.ToLower(username)

	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	usable := false

	switch {
	case lookupErr == nil && user.IsActive:
		targetHash = user.PasswordHash
		usable = true
	case lookupErr == nil:
		// Disabled account: verify the dummy hash like a miss.
	case errors.Is(lookupErr, ErrNotFound):
		// Unknown username: verify the dummy hash.
	default:
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && usable {
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !usable || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	return user, nil
}

// Login runs the full flow: abuse gate first (before any hashing cost), then
// credential verification, then session creation. A failed credential check
// records an attempt row; the abuse decision itself is independent of whether
// this login would have succeeded.
func (s *Service) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	username = strings.ToLower(username)

	abusive, err := s.detector.IsAbusive(ctx, ip, username)
	if err != nil {
		// Fail closed with a retriable error; never skip the gate.
		recordLogin(LoginResultError)
		return nil, oops.Code("ATTEMPTS_UNAVAILABLE").
			With("operation", "abuse check").
			Wrap(err)
	}
	if abusive {
		recordLogin(LoginResultAbuseDetected)
		Lockouts.Inc()
		return nil, oops.Code("AUTH_ABUSE_DETECTED").Wrap(ErrAbuseDetected)
	}

	user, err := s.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			recordLogin(LoginResultInvalidCredentials)
			if recordErr := s.detector.RecordFailure(ctx, ip, username); recordErr != nil {
				s.logger.Warn("failed to record auth attempt",
					"ip", ip,
					"error", recordErr)
			}
		} else {
			recordLogin(LoginResultError)
		}
		return nil, err
	}

	session, key, err := s.sessions.Create(ctx, user.ID, ip, userAgent)
	if err != nil {
		recordLogin(LoginResultError)
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	recordLogin(LoginResultSuccess)
	return &LoginResult{
		User:       user.Public(),
		Session:    session,
		Key:        key,
		AuthHeader: BasicAuthHeader(session.ID, key),
	}, nil
}

// VerifySession validates a presented (sessionID, key) credential and
// returns the session.
func (s *Service) VerifySession(ctx context.Context, sessionID ulid.ULID, key string) (*Session, error) {
	return s.sessions.Verify(ctx, sessionID, key)
}

// Logout deletes a session.
func (s *Service) Logout(ctx context.Context, sessionID ulid.ULID) error {
	return s.sessions.Delete(ctx, sessionID)
}
