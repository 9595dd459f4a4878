// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package audit records security-relevant events for later review:
// logins, password changes and the admin user-management operations.
package audit

import "time"

// EventType categorizes audit events.
type EventType string

const (
	EventAuthSuccess    EventType = "auth.success"
	EventAuthFailure    EventType = "auth.failure"
	EventPasswordChange EventType = "auth.password_changed"
	EventPasswordReset  EventType = "auth.password_reset"

	EventUserCreated  EventType = "user.created"
	EventUserModified EventType = "user.modified"
	EventUserDeleted  EventType = "user.deleted"
	EventRoleAssigned EventType = "user.role_assigned"
	EventRoleRevoked  EventType = "user.role_revoked"
)

// Outcome indicates whether the recorded action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	// ID is a unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// Actor is the principal that performed the action, or the submitted
	// email for login attempts.
	Actor string `json:"actor"`

	// Target is the affected account, when different from the actor.
	Target string `json:"target,omitempty"`

	// Outcome records success or failure.
	Outcome Outcome `json:"outcome"`

	// RequestID links the event to the request log stream.
	RequestID string `json:"request_id,omitempty"`
}
