// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "time"

// Default policy values. Every one of them is overridable through Config;
// none is read from ambient state.
const (
	// DefaultAbuseWindow is the trailing interval over which failed-attempt
	// counts are evaluated.
	DefaultAbuseWindow = time.Hour

	// DefaultMaxAttemptsPerPair caps failures for an exact (ip, username) pair.
	DefaultMaxAttemptsPerPair = 10

	// DefaultMaxAttemptsPerIP caps failures from a single ip across all
	// usernames. Stops one attacker spraying many accounts.
	DefaultMaxAttemptsPerIP = 50

	// DefaultMaxAttemptsPerUsername caps failures against a single username
	// across all ips. Stops a distributed attack on one account.
	DefaultMaxAttemptsPerUsername = 7

	// DefaultResetWindow is how long a password-reset key stays valid.
	DefaultResetWindow = 10000 * time.Second
)

// Config carries the tunable auth policy. Components receive it at
// construction so tests can override individual thresholds.
type Config struct {
	// AbuseWindow is the trailing window for failed-attempt counting.
	AbuseWindow time.Duration

	// MaxAttemptsPerPair locks out an exact (ip, username) pair.
	MaxAttemptsPerPair int64

	// MaxAttemptsPerIP locks out an ip regardless of username.
	MaxAttemptsPerIP int64

	// MaxAttemptsPerUsername locks out a username regardless of ip.
	MaxAttemptsPerUsername int64

	// ResetWindow is the validity duration of a password-reset key,
	// measured from issuance.
	ResetWindow time.Duration
}

// DefaultConfig returns the default auth policy.
func DefaultConfig() Config {
	return Config{
		AbuseWindow:            DefaultAbuseWindow,
		MaxAttemptsPerPair:     DefaultMaxAttemptsPerPair,
		MaxAttemptsPerIP:       DefaultMaxAttemptsPerIP,
		MaxAttemptsPerUsername: DefaultMaxAttemptsPerUsername,
		ResetWindow:            DefaultResetWindow,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.AbuseWindow <= 0 {
		c.AbuseWindow = def.AbuseWindow
	}
	if c.MaxAttemptsPerPair <= 0 {
		c.MaxAttemptsPerPair = def.MaxAttemptsPerPair
	}
	if c.MaxAttemptsPerIP <= 0 {
		c.MaxAttemptsPerIP = def.MaxAttemptsPerIP
	}
	if c.MaxAttemptsPerUsername <= 0 {
		c.MaxAttemptsPerUsername = def.MaxAttemptsPerUsername
	}
	if c.ResetWindow <= 0 {
		c.ResetWindow = def.ResetWindow
	}
	return c
}
