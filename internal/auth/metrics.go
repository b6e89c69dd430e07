// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result constants for login metrics.
const (
	LoginResultSuccess            = "success"
	LoginResultInvalidCredentials = "invalid_credentials"
	LoginResultAbuseDetected      = "abuse_detected"
	LoginResultError              = "error"
)

// Stage constants for reset metrics.
const (
	ResetStageRequested = "requested"
	ResetStageCompleted = "completed"
)

// Logins is the counter for login attempts by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_logins_total",
		Help: "Total number of login attempts by result",
	},
	[]string{"result"},
)

// Lockouts is the counter for logins rejected by the abuse detector.
// Use RegisterMetrics to register this with a Prometheus registry.
var Lockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatehouse_lockouts_total",
		Help: "Total number of logins rejected by the abuse detector",
	},
)

// ResetRequests is the counter for password reset operations by stage.
// Use RegisterMetrics to register this with a Prometheus registry.
var ResetRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_reset_requests_total",
		Help: "Total number of password reset operations by stage",
	},
	[]string{"stage"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Logins)
	reg.MustRegister(Lockouts)
	reg.MustRegister(ResetRequests)
}

// recordLogin increments the login counter with the given result
// (use LoginResult* constants).
func recordLogin(result string) {
	Logins.WithLabelValues(result).Inc()
}
