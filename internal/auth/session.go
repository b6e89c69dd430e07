// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// KeyBytes is the entropy of session and reset keys. 32 bytes = 64 hex chars.
const KeyBytes = 32

// Session represents an authenticated session. The plaintext key is returned
// exactly once at creation; only KeyHash is ever persisted. Sessions carry no
// expiry - they live until explicitly deleted.
type Session struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	KeyHash   string
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// NewSession creates a validated Session. IP and UserAgent are optional.
func NewSession(userID ulid.ULID, keyHash, ip, userAgent string) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if keyHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("key hash cannot be empty")
	}

	return &Session{
		ID:        ulid.Make(),
		UserID:    userID,
		KeyHash:   keyHash,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateKey creates a high-entropy random secret and its stored hash.
// Returns (plaintext_key, sha256_hash, error). The same primitive backs both
// session keys and password-reset keys: the plaintext goes to the caller, the
// hash to the store, and the secret is not recoverable from the hash.
func GenerateKey() (key, hash string, err error) {
	raw := make([]byte, KeyBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("KEY_GENERATE_FAILED").
			With("requested_bytes", KeyBytes).
			Wrap(err)
	}

	key = hex.EncodeToString(raw)
	hash = HashKey(key)

	return key, hash, nil
}

// HashKey computes the stored hash of a key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// VerifyKey reports whether the presented key matches the stored hash.
// Constant-effort: the full hash is recomputed and compared without
// early exit.
func VerifyKey(key, hash string) bool {
	if key == "" || hash == "" {
		return false
	}
	computed := HashKey(key)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// BasicAuthHeader composes the bearer credential a client presents on
// subsequent requests: "Basic " + base64(sessionID:key). This is the one
// bit-exact wire format external clients must reproduce; the server side
// never decodes it, it receives the two fields and calls Verify.
func BasicAuthHeader(sessionID ulid.ULID, key string) string {
	credentials := sessionID.String() + ":" + key
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Session, error)

	// GetByUser retrieves all sessions for a user, newest first.
	GetByUser(ctx context.Context, userID ulid.ULID) ([]*Session, error)

	// Delete removes a session by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByUser removes all sessions for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error
}

// SessionManager creates and verifies sessions.
type SessionManager struct {
	sessions SessionRepository
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(sessions SessionRepository) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("session repository is required")
	}
	return &SessionManager{sessions: sessions}, nil
}

// Create generates a key/hash pair, persists the session, and returns the
// record together with the one-time plaintext key. The key must not be
// stored or logged after this call returns it.
func (m *SessionManager) Create(ctx context.Context, userID ulid.ULID, ip, userAgent string) (*Session, string, error) {
	key, keyHash, err := GenerateKey()
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session key").
			Wrap(err)
	}

	session, err := NewSession(userID, keyHash, ip, userAgent)
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "build session").
			Wrap(err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, key, nil
}

// Verify loads the session by ID and checks the presented key against the
// stored hash. Unknown session and wrong key both return
// ErrInvalidCredentials.
func (m *SessionManager) Verify(ctx context.Context, sessionID ulid.ULID, key string) (*Session, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").
				Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("SESSION_VERIFY_FAILED").
			With("operation", "get session by id").
			Wrap(err)
	}

	if !VerifyKey(key, session.KeyHash) {
		return nil, oops.Code("SESSION_INVALID").
			Wrap(ErrInvalidCredentials)
	}

	return session, nil
}

// Delete removes a session (logout).
func (m *SessionManager) Delete(ctx context.Context, sessionID ulid.ULID) error {
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_NOT_FOUND").
				With("session_id", sessionID.String()).
				Wrap(err)
		}
		return oops.Code("SESSION_DELETE_FAILED").
			With("session_id", sessionID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteByUser removes every session belonging to a user.
func (m *SessionManager) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	if err := m.sessions.DeleteByUser(ctx, userID); err != nil {
		return oops.Code("SESSION_DELETE_BY_USER_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}
