// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import "context"

// AnonymousSubject is the fixed subject of resource tokens and of the
// principals they authenticate.
const AnonymousSubject = "anon"

// Principal is the output of successful request authentication: the
// verified token subject and its admin snapshot. Principals are
// request-scoped and never persisted.
type Principal struct {
	// Subject is the user's email address, or AnonymousSubject for
	// resource-authenticated requests.
	Subject string `json:"subject"`

	// Admin is the role snapshot taken from the verified token claims.
	Admin bool `json:"admin"`
}

// IsAnonymous reports whether the principal came from a resource token.
func (p *Principal) IsAnonymous() bool {
	return p.Subject == AnonymousSubject
}

type contextKey string

// principalKey is the context key under which middleware stores the
// authenticated principal.
const principalKey contextKey = "principal"

// ContextWithPrincipal returns a context carrying p.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request did not pass authentication middleware.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}
