// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login attempts.
	// Labels:
	//   - outcome: "success", "failure", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// TokenVerificationFailures counts token verification failures.
	// Labels:
	//   - channel: "session", "resource"
	//   - kind: "bad_signature", "expired", "malformed"
	TokenVerificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_token_verification_failures_total",
			Help: "Total number of token verification failures",
		},
		[]string{"channel", "kind"},
	)

	// XSRFMismatches counts failed double-submit checks.
	XSRFMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trip_xsrf_mismatches_total",
			Help: "Total number of XSRF double-submit mismatches",
		},
	)

	// TokenRenewals counts session renewals.
	// Labels:
	//   - outcome: "success", "error"
	TokenRenewals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_token_renewals_total",
			Help: "Total number of session token renewals",
		},
		[]string{"outcome"},
	)

	// LoginThrottled counts login attempts rejected by rate limiting
	// before any credential check ran.
	LoginThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trip_login_throttled_total",
			Help: "Total number of login attempts rejected by throttling",
		},
	)
)
