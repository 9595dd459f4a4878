// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/frankdean/trip-server-sub001/internal/config"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
	"github.com/frankdean/trip-server-sub001/internal/store"
)

// Tokens is the result of a successful login or renewal. The session token
// goes to the client in the response body (echoed back as a bearer header),
// the XSRF value in a cookie, and the resource token in the body for use as
// a URL query parameter on header-less endpoints.
type Tokens struct {
	SessionToken  string
	XSRF          string
	ResourceToken string
}

// SessionIssuer orchestrates login: credential check, role lookup, token
// issue, XSRF derivation and resource-token issue. It also owns password
// rotation.
//
// The issuer holds no per-request state; concurrent logins for the same
// user produce independent, equally valid tokens.
type SessionIssuer struct {
	store       store.CredentialStore
	hasher      *PasswordHasher
	cfg         *config.SecurityConfig
	sessionKey  []byte
	resourceKey []byte
}

// NewSessionIssuer creates a SessionIssuer over the given credential store.
func NewSessionIssuer(cfg *config.SecurityConfig, st store.CredentialStore, hasher *PasswordHasher) *SessionIssuer {
	return &SessionIssuer{
		store:       st,
		hasher:      hasher,
		cfg:         cfg,
		sessionKey:  []byte(cfg.SessionSecret),
		resourceKey: []byte(cfg.ResourceSecret),
	}
}

// Login verifies the credentials and issues a token set.
//
// Unknown user and wrong password both return ErrAuthFailure; only the
// internal log distinguishes them. Store failures are returned as-is so
// the boundary reports them as internal errors, not credential rejections.
func (s *SessionIssuer) Login(ctx context.Context, email, password string) (*Tokens, error) {
	hash, err := s.store.GetPasswordHash(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Same rejection as a wrong password. The lookup itself is not
		// constant-time; see the hardening note in DESIGN.md.
		logging.Ctx(ctx).Info().Str("email", email).Msg("login attempt for unknown user")
		LoginAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAuthFailure
	}
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("credential store: %w", err)
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		// Fail closed: a hasher error is never a match.
		logging.Ctx(ctx).Error().Err(err).Str("email", email).Msg("password verification error")
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, ErrAuthFailure
	}
	if !ok {
		logging.Ctx(ctx).Info().Str("email", email).Msg("login attempt with wrong password")
		LoginAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAuthFailure
	}

	tokens, err := s.issue(ctx, email)
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	LoginAttempts.WithLabelValues("success").Inc()
	return tokens, nil
}

// Renew issues a fresh token set for an already-authenticated subject. The
// caller must have validated an existing session token for subject; no
// password check is performed here. Role membership is re-read from the
// store, so a role change takes effect at renewal.
func (s *SessionIssuer) Renew(ctx context.Context, subject string) (*Tokens, error) {
	tokens, err := s.issue(ctx, subject)
	if err != nil {
		TokenRenewals.WithLabelValues("error").Inc()
		return nil, err
	}
	TokenRenewals.WithLabelValues("success").Inc()
	return tokens, nil
}

// issue performs role lookup, session-token signing, XSRF derivation and
// resource-token signing.
func (s *SessionIssuer) issue(ctx context.Context, subject string) (*Tokens, error) {
	admin, err := s.store.HasRole(ctx, subject, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("role lookup: %w", err)
	}

	sessionToken, err := SignToken(s.sessionKey, subject, admin, s.cfg.RenewalWindow, s.cfg.SessionTokenTTL)
	if err != nil {
		return nil, err
	}

	// The resource token is issued unconditionally with every login so
	// header-less endpoints work without re-authentication. It is always
	// anonymous and non-admin, whoever logged in.
	resourceToken, err := SignToken(s.resourceKey, AnonymousSubject, false, 0, s.cfg.ResourceTokenTTL)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		SessionToken:  sessionToken,
		XSRF:          DeriveXSRF(sessionToken, s.sessionKey),
		ResourceToken: resourceToken,
	}, nil
}

// ResetPassword hashes and stores newPassword for email without checking
// the old password. Callers must restrict this to admin principals.
func (s *SessionIssuer) ResetPassword(ctx context.Context, email, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPasswordHash(ctx, email, hash); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("email", email).Msg("password reset")
	return nil
}

// ChangePassword verifies oldPassword and, on match, stores a hash of
// newPassword. On mismatch, verification error or unknown user it returns
// ErrInvalidCredentials without touching the store.
func (s *SessionIssuer) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	hash, err := s.store.GetPasswordHash(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}

	ok, err := s.hasher.Verify(oldPassword, hash)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("email", email).Msg("password verification error during change")
		return ErrInvalidCredentials
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPasswordHash(ctx, email, newHash); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("email", email).Msg("password changed")
	return nil
}
