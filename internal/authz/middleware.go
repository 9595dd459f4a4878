// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package authz

import (
	"net/http"

	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/logging"
)

// Middleware enforces authorization decisions at the routing boundary.
//
// Denials are answered by the deny handler, which the router wires to its
// not-found response. A non-admin probing an admin path learns nothing it
// would not learn from a path that does not exist.
type Middleware struct {
	enforcer *Enforcer
	deny     http.HandlerFunc
}

// NewMiddleware creates authorization middleware. deny is invoked for
// every rejected request.
func NewMiddleware(enforcer *Enforcer, deny http.HandlerFunc) *Middleware {
	return &Middleware{enforcer: enforcer, deny: deny}
}

// RequireAdmin restricts a subtree to principals holding the Admin role.
// It must run after authentication middleware has stored the principal.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := auth.PrincipalFromContext(r.Context())

		allowed, err := m.enforcer.Allowed(principal, r.URL.Path, methodToAction(r.Method))
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("authorization error")
			m.deny(w, r)
			return
		}
		if !allowed {
			subject := ""
			if principal != nil {
				subject = principal.Subject
			}
			logging.Ctx(r.Context()).Info().
				Str("subject", subject).
				Str("path", r.URL.Path).
				Msg("authorization denied")
			m.deny(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodDelete:
		return "delete"
	default:
		return "write"
	}
}
