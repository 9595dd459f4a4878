// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/frankdean/trip-server-sub001/internal/audit"
	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/cache"
	"github.com/frankdean/trip-server-sub001/internal/config"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
	"github.com/frankdean/trip-server-sub001/internal/store"
	"github.com/frankdean/trip-server-sub001/internal/validation"
)

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	cfg      *config.Config
	issuer   *auth.SessionIssuer
	store    store.CredentialStore
	hasher   *auth.PasswordHasher
	throttle *auth.LoginThrottle
	tiles    *cache.LRUCache
	audit    audit.Recorder
}

// NewHandler creates a Handler.
func NewHandler(cfg *config.Config, issuer *auth.SessionIssuer, st store.CredentialStore, hasher *auth.PasswordHasher, throttle *auth.LoginThrottle, recorder audit.Recorder) *Handler {
	return &Handler{
		cfg:      cfg,
		issuer:   issuer,
		store:    st,
		hasher:   hasher,
		throttle: throttle,
		tiles:    cache.NewLRUCache(4096, time.Hour),
		audit:    recorder,
	}
}

// Login handles POST /login. On success the session and resource tokens go
// to the body and the XSRF value to its cookie. Every failure mode that
// involves the submitted credentials gets the same 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.throttle.Allow(clientKey(r)) {
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many login attempts")
		return
	}

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		// A syntactically invalid email can never match a stored user, so
		// rejecting it here leaks nothing a 401 would hide.
		respondValidationError(w, r, verr)
		return
	}

	tokens, err := h.issuer.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailure) {
			h.audit.Record(r.Context(), &audit.Event{
				Type:    audit.EventAuthFailure,
				Actor:   req.Email,
				Outcome: audit.OutcomeFailure,
			})
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("login failed internally")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.audit.Record(r.Context(), &audit.Event{
		Type:    audit.EventAuthSuccess,
		Actor:   req.Email,
		Outcome: audit.OutcomeSuccess,
	})
	h.setXSRFCookie(w, tokens.XSRF)
	respondJSON(w, r, http.StatusOK, &models.TokenResponse{
		Token:         tokens.SessionToken,
		ResourceToken: tokens.ResourceToken,
	})
}

// RenewToken handles GET /login/token/renew. The request already passed
// full authentication, so a fresh token set is issued for the same
// subject. Role membership is re-read, not copied from the old token.
func (h *Handler) RenewToken(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil || principal.IsAnonymous() {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
		return
	}

	tokens, err := h.issuer.Renew(r.Context(), principal.Subject)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("token renewal failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.setXSRFCookie(w, tokens.XSRF)
	respondJSON(w, r, http.StatusOK, &models.TokenResponse{
		Token:         tokens.SessionToken,
		ResourceToken: tokens.ResourceToken,
	})
}

// ChangePassword handles PUT /account/password. The current password must
// match even though the request is fully authenticated; a stolen session
// alone cannot rotate the credential.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil || principal.IsAnonymous() {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	err := h.issuer.ChangePassword(r.Context(), principal.Subject, req.Current, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.audit.Record(r.Context(), &audit.Event{
				Type:    audit.EventPasswordChange,
				Actor:   principal.Subject,
				Outcome: audit.OutcomeFailure,
			})
			// The caller is already authenticated, so this is a bad request
			// parameter, not a login failure.
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidCredentials, "Current password does not match")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("password change failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.audit.Record(r.Context(), &audit.Event{
		Type:    audit.EventPasswordChange,
		Actor:   principal.Subject,
		Outcome: audit.OutcomeSuccess,
	})
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Landing handles GET /, redirecting browsers to the web application
// route. The API itself has no representation at the root.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.Server.LandingRoute, http.StatusTemporaryRedirect)
}

// setXSRFCookie delivers the XSRF value. Deliberately not HttpOnly: the
// client script must read it back into the request header for the
// double-submit check.
func (h *Handler) setXSRFCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Security.XSRFCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cfg.Security.SessionTokenTTL.Seconds()),
		Secure:   h.cfg.Security.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clientKey derives the throttle key from the request. The port is
// stripped so reconnects do not reset the budget.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
