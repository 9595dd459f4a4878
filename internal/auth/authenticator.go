// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/frankdean/trip-server-sub001/internal/config"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
)

// AuthPath selects how a request is authenticated. The choice is made once
// per request at the routing boundary, never re-derived inside handlers.
type AuthPath string

const (
	// FullAuth requires a bearer session token plus the XSRF
	// double-submit pair. Default for protected endpoints.
	FullAuth AuthPath = "full"

	// ResourceAuth verifies a resource token supplied as a query
	// parameter. Only for endpoints that cannot carry request headers,
	// such as embedded image fetches.
	ResourceAuth AuthPath = "resource"
)

// accessTokenParam is the query parameter carrying resource tokens.
const accessTokenParam = "access_token"

// RequestAuthenticator is the per-request gate. It validates the bearer
// token and XSRF cookie pair, or a resource token for restricted-scheme
// endpoints, and produces an authenticated Principal or a uniform
// rejection.
type RequestAuthenticator struct {
	cfg         *config.SecurityConfig
	sessionKey  []byte
	resourceKey []byte
}

// NewRequestAuthenticator creates a RequestAuthenticator from the security
// configuration.
func NewRequestAuthenticator(cfg *config.SecurityConfig) *RequestAuthenticator {
	return &RequestAuthenticator{
		cfg:         cfg,
		sessionKey:  []byte(cfg.SessionSecret),
		resourceKey: []byte(cfg.ResourceSecret),
	}
}

// AuthenticateFull validates the Authorization bearer token and the XSRF
// double-submit pair, returning the authenticated principal.
//
// Any failure, at whichever step, is reported to the client as the same
// uniform unauthorized rejection; the returned error is for internal
// logging only.
func (a *RequestAuthenticator) AuthenticateFull(r *http.Request) (*Principal, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	claims, err := VerifyToken(token, a.sessionKey)
	if err != nil {
		var verr *VerificationError
		if errors.As(err, &verr) {
			TokenVerificationFailures.WithLabelValues("session", string(verr.Kind)).Inc()
		}
		return nil, err
	}

	if err := a.checkXSRF(r, token); err != nil {
		return nil, err
	}

	return &Principal{Subject: claims.Subject, Admin: claims.Admin}, nil
}

// checkXSRF validates both halves of the double-submit pair: the cookie
// set at login and the header the client script echoes from it. Both must
// equal the value derived from the presented session token.
func (a *RequestAuthenticator) checkXSRF(r *http.Request, token string) error {
	cookie, err := r.Cookie(a.cfg.XSRFCookieName)
	if err != nil || cookie.Value == "" {
		XSRFMismatches.Inc()
		return ErrXSRFMismatch
	}
	header := r.Header.Get(a.cfg.XSRFHeaderName)
	if header == "" {
		XSRFMismatches.Inc()
		return ErrXSRFMismatch
	}

	if !CheckXSRF(cookie.Value, token, a.sessionKey) || !CheckXSRF(header, token, a.sessionKey) {
		XSRFMismatches.Inc()
		return ErrXSRFMismatch
	}
	return nil
}

// AuthenticateResource validates the access_token query parameter against
// the resource key. The resulting principal is always anonymous and
// non-admin, whatever the token claims contain; resource tokens can never
// elevate.
func (a *RequestAuthenticator) AuthenticateResource(r *http.Request) (*Principal, error) {
	token := r.URL.Query().Get(accessTokenParam)
	if token == "" {
		return nil, ErrNoCredentials
	}

	if _, err := VerifyToken(token, a.resourceKey); err != nil {
		var verr *VerificationError
		if errors.As(err, &verr) {
			TokenVerificationFailures.WithLabelValues("resource", string(verr.Kind)).Inc()
		}
		return nil, err
	}

	return &Principal{Subject: AnonymousSubject, Admin: false}, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrNoCredentials
	}
	return parts[1], nil
}

// RequireFullAuth is middleware enforcing the full authentication path.
// The authenticated principal is stored in the request context.
func (a *RequestAuthenticator) RequireFullAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.AuthenticateFull(r)
		if err != nil {
			a.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireResourceAuth is middleware enforcing the resource-scoped
// authentication path.
func (a *RequestAuthenticator) RequireResourceAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.AuthenticateResource(r)
		if err != nil {
			a.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// logRejection records why a request was rejected. XSRF mismatches log
// below forged-signature failures: they commonly come from benign client
// bugs, not attacks, and both are rejected identically anyway.
func (a *RequestAuthenticator) logRejection(r *http.Request, err error) {
	log := logging.Ctx(r.Context())
	switch {
	case errors.Is(err, ErrNoCredentials):
		log.Debug().Str("path", r.URL.Path).Msg("request without credentials")
	case errors.Is(err, ErrXSRFMismatch):
		log.Info().Str("path", r.URL.Path).Msg("xsrf double-submit mismatch")
	default:
		var verr *VerificationError
		if errors.As(err, &verr) && verr.Kind == Expired {
			log.Debug().Str("path", r.URL.Path).Msg("expired token")
			return
		}
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("token verification failed")
	}
}

// writeUnauthorized sends the uniform low-information rejection shared by
// every authentication failure.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // error response
	json.NewEncoder(w).Encode(&models.ErrorResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Unauthorized",
		},
	})
}
