// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// Sentinel errors shared across the auth core. Callers match them with
// errors.Is; the oops wrappers add codes and context on top.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	// It is never surfaced on user-facing login or reset paths.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers every user-facing authentication failure:
	// unknown username, wrong password, inactive account, invalid or expired
	// reset key. The categories are deliberately merged to prevent enumeration.
	ErrInvalidCredentials = errors.New("credentials are invalid or account is inactive")

	// ErrAbuseDetected is returned when the failed-attempt budget for an
	// (ip, username) combination has been exceeded.
	ErrAbuseDetected = errors.New("maximum number of auth attempts reached")

	// ErrUserExists is returned when creating a user whose username or email
	// is already taken.
	ErrUserExists = errors.New("user already exists")
)
