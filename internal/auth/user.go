// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain only
// letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// emailRegex is a deliberately loose shape check; real validation is the
// delivery collaborator's problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PendingReset is the single-use, time-limited reset record attached to a
// user. Only the key hash is stored; the plaintext key goes out of band.
type PendingReset struct {
	TokenHash string
	ExpiresAt time.Time
}

// IsLive reports whether the reset record is still valid at the given time.
// Expired records are never matched; they are cleared lazily on the next
// issue or consume, not by a background sweep.
func (r *PendingReset) IsLive(now time.Time) bool {
	return r != nil && now.Before(r.ExpiresAt)
}

// User represents a credential record. Username and Email are stored
// lowercase and unique.
type User struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	IsActive     bool
	PendingReset *PendingReset
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the view of a User that may leave the auth core: identity
// fields only, no password hash and no reset record. Transports can marshal
// it as-is.
type PublicUser struct {
	ID       ulid.ULID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles"`
}

// Public projects the user onto its externally visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles,
	}
}

// NewUser creates a validated User with a freshly generated ID. The username
// and email are lowercased; the password hash must already be computed.
func NewUser(username, email, passwordHash string, roles []string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if !emailRegex.MatchString(email) {
		return nil, oops.Code("USER_INVALID_EMAIL").With("email", email).Errorf("email address is malformed")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername validates a username: MinUsernameLength to
// MaxUsernameLength characters, starting with a letter, containing only
// letters, numbers, and underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("USER_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserRepository manages credential-record persistence. Implementations must
// return ErrNotFound (possibly wrapped) when a lookup misses and ErrUserExists
// when a unique constraint is violated on Create.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by lowercase username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by lowercase email, including any pending
	// reset record.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the password hash for a user.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetPendingReset stores a pending reset record on the user,
	// overwriting any prior one.
	SetPendingReset(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error

	// ConsumeReset sets a new password hash and clears the pending reset
	// record in a single atomic update.
	ConsumeReset(ctx context.Context, id ulid.ULID, passwordHash string) error

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error
}
