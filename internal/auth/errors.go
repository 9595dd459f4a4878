// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"errors"
	"fmt"
)

// Authentication errors. All of these map to the same uniform rejection at
// the HTTP boundary; only internal logs distinguish them.
var (
	// ErrAuthFailure indicates a failed login. Unknown user and wrong
	// password are deliberately indistinguishable to the client.
	ErrAuthFailure = errors.New("invalid email or password")

	// ErrInvalidCredentials indicates the current password supplied to a
	// password change did not match. Distinct from ErrAuthFailure so the
	// change-password endpoint can report it without looking like a login
	// failure.
	ErrInvalidCredentials = errors.New("current password does not match")

	// ErrNoCredentials indicates the request carried no credentials.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrXSRFMismatch indicates the double-submit check failed. Commonly a
	// benign client bug, so it is logged below forged-signature failures.
	ErrXSRFMismatch = errors.New("xsrf token mismatch")

	// ErrHasher indicates an internal failure of the password hashing
	// primitive. It must never be interpreted as a successful match.
	ErrHasher = errors.New("credential verification error")
)

// VerificationErrorKind classifies token verification failures.
type VerificationErrorKind string

const (
	// BadSignature: the signature does not verify under the given key.
	BadSignature VerificationErrorKind = "bad_signature"

	// Expired: the signature verifies but the token is past its expiry.
	Expired VerificationErrorKind = "expired"

	// Malformed: the token could not be parsed at all.
	Malformed VerificationErrorKind = "malformed"
)

// VerificationError is returned when a token fails verification.
type VerificationError struct {
	Kind VerificationErrorKind
	Err  error
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token verification failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("token verification failed (%s)", e.Kind)
}

// Unwrap returns the underlying parser error.
func (e *VerificationError) Unwrap() error { return e.Err }
