// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth implements the Gatehouse authentication core: credential
// verification, opaque session keys, brute-force detection, and the
// time-limited password-reset flow.
//
// # Domain Types
//
// Domain types (User, Session, AuthAttempt) should be created through their
// constructors (NewUser, NewSession, NewAuthAttempt), which validate required
// fields. Repository implementations receive pre-validated values.
//
// # Services
//
// Service types coordinate the flows:
//   - Service - login, session verification, logout
//   - SessionManager - session key generation and verification
//   - Detector - failed-attempt accounting and lockout decisions
//   - PasswordResetService - issue, validate, and consume reset keys
//
// All services take their thresholds and windows from an explicit Config so
// tests can override them; nothing reads ambient global state.
//
// Storage is abstracted behind per-entity repository interfaces; the postgres
// subpackage provides the pgx implementations.
package auth
