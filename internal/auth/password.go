// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/frankdean/trip-server-sub001/internal/config"
)

// PasswordHasher provides one-way adaptive password hashing using bcrypt.
//
// Hash generates a fresh random salt per call and encodes salt and work
// factor into the returned hash string, so Verify needs no extra state.
// Both methods are safe for concurrent use; hashing is CPU-bound at the
// configured cost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the configured bcrypt cost.
func NewPasswordHasher(cfg *config.SecurityConfig) *PasswordHasher {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a self-describing bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches storedHash. The comparison is
// timing-safe inside bcrypt.
//
// Verify fails closed: a malformed stored hash or any internal bcrypt error
// returns false together with an error wrapping ErrHasher, never a match.
func (h *PasswordHasher) Verify(plaintext, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHasher, err)
}
