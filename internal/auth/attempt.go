// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AuthAttempt is one failed login attempt. Rows are append-only: nothing
// mutates them after creation, and retention is an operational concern
// handled by DeleteOlderThan, not by the login path.
type AuthAttempt struct {
	ID        ulid.ULID
	IP        string
	Username  string
	CreatedAt time.Time
}

// NewAuthAttempt creates a validated AuthAttempt.
func NewAuthAttempt(ip, username string) (*AuthAttempt, error) {
	if ip == "" {
		return nil, oops.Code("ATTEMPT_INVALID_IP").Errorf("ip cannot be empty")
	}
	if username == "" {
		return nil, oops.Code("ATTEMPT_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	return &AuthAttempt{
		ID:        ulid.Make(),
		IP:        ip,
		Username:  username,
		CreatedAt: time.Now(),
	}, nil
}

// AttemptCounts holds the three independent failure counts over the abuse
// window for one (ip, username) probe.
type AttemptCounts struct {
	ByIP       int64 // failures from this ip, any username
	ByUsername int64 // failures against this username, any ip
	ByPair     int64 // failures for the exact (ip, username) pair
}

// AuthAttemptRepository manages failed-attempt persistence.
type AuthAttemptRepository interface {
	// Create appends a failed attempt.
	Create(ctx context.Context, attempt *AuthAttempt) error

	// CountSince returns the three failure counts for attempts at or after
	// the given time.
	CountSince(ctx context.Context, since time.Time, ip, username string) (AttemptCounts, error)

	// DeleteOlderThan removes attempts created before the cutoff and
	// returns the count of deleted rows.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Detector decides whether an (ip, username) pair has exceeded its retry
// budget. The decision is a pure function of recent attempt history - there
// is no per-account lockout state to reset.
type Detector struct {
	attempts AuthAttemptRepository
	cfg      Config
}

// NewDetector creates a Detector. Zero-valued Config fields fall back to
// defaults.
func NewDetector(attempts AuthAttemptRepository, cfg Config) (*Detector, error) {
	if attempts == nil {
		return nil, oops.Code("DETECTOR_INVALID").Errorf("attempt repository is required")
	}
	return &Detector{attempts: attempts, cfg: cfg.withDefaults()}, nil
}

// RecordFailure appends an attempt row for a failed login.
func (d *Detector) RecordFailure(ctx context.Context, ip, username string) error {
	attempt, err := NewAuthAttempt(ip, username)
	if err != nil {
		return err
	}
	if err := d.attempts.Create(ctx, attempt); err != nil {
		return oops.Code("ATTEMPT_RECORD_FAILED").
			With("ip", ip).
			Wrap(err)
	}
	return nil
}

// IsAbusive reports whether any of the three failure counts over the
// trailing window meets its configured limit. A store failure is returned as
// an error, never treated as "not abusive": the caller must fail the login
// with a retriable error rather than fail open.
func (d *Detector) IsAbusive(ctx context.Context, ip, username string) (bool, error) {
	since := time.Now().Add(-d.cfg.AbuseWindow)

	counts, err := d.attempts.CountSince(ctx, since, ip, username)
	if err != nil {
		return false, oops.Code("ATTEMPTS_UNAVAILABLE").
			With("operation", "count attempts").
			Wrap(err)
	}

	switch {
	case counts.ByPair >= d.cfg.MaxAttemptsPerPair:
		return true, nil
	case counts.ByIP >= d.cfg.MaxAttemptsPerIP:
		return true, nil
	case counts.ByUsername >= d.cfg.MaxAttemptsPerUsername:
		return true, nil
	}
	return false, nil
}
