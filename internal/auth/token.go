// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the signed contents of a session or resource token.
//
// Admin is a snapshot of role membership at issue time; it is never
// re-checked against the store mid-session, so revoked admin rights remain
// effective until the token expires. This is an intentional trade-off that
// keeps request authentication store-free; tune SessionTokenTTL
// accordingly.
type Claims struct {
	// Admin is true when the subject held the Admin role at issue time.
	Admin bool `json:"admin"`

	// Renewal is the length in seconds of the trailing window before
	// expiry during which the client should request a replacement token.
	Renewal int64 `json:"renewal,omitempty"`

	jwt.RegisteredClaims
}

// SignToken creates a signed token for subject under key, expiring after
// ttl. The token carries a unique id so that two tokens issued in the same
// second for the same subject still differ.
//
// Session tokens and resource tokens use the same codec with independent
// keys; a token signed with one key never verifies under the other.
func SignToken(key []byte, subject string, admin bool, renewalWindow, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Admin:   admin,
		Renewal: int64(renewalWindow.Seconds()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates tokenString under key and returns its claims.
// Failures are reported as *VerificationError with kind BadSignature,
// Expired or Malformed.
func VerifyToken(tokenString string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Reject algorithm confusion: only HMAC is acceptable.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})

	if err != nil {
		return nil, &VerificationError{Kind: classifyTokenError(err), Err: err}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &VerificationError{Kind: Malformed, Err: errors.New("invalid token claims")}
	}
	return claims, nil
}

// classifyTokenError maps jwt/v5 sentinel errors to verification kinds.
func classifyTokenError(err error) VerificationErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Expired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return BadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Malformed
	default:
		// Unknown parser failures are treated as malformed input rather
		// than guessed at.
		return Malformed
	}
}
