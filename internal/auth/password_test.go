// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/frankdean/trip-server-sub001/internal/config"
)

func testHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	// MinCost keeps the test fast; production cost is configured higher.
	return NewPasswordHasher(&config.SecurityConfig{BcryptCost: bcrypt.MinCost})
}

func TestPasswordHashVerify(t *testing.T) {
	h := testHasher(t)

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "secret123" || hash == "" {
		t.Fatal("hash must not be empty or equal to the plaintext")
	}

	ok, err := h.Verify("secret123", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = h.Verify("secret124", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestPasswordHashSalted(t *testing.T) {
	h := testHasher(t)

	first, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ via salting")
	}
}

func TestPasswordVerifyFailsClosed(t *testing.T) {
	h := testHasher(t)

	tests := []struct {
		name       string
		storedHash string
	}{
		{"empty hash", ""},
		{"not a bcrypt hash", "plaintext-in-store"},
		{"truncated hash", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("secret123", tt.storedHash)
			if ok {
				t.Error("malformed stored hash must never verify")
			}
			if err == nil {
				t.Fatal("expected an error for a malformed stored hash")
			}
			if !errors.Is(err, ErrHasher) {
				t.Errorf("expected ErrHasher, got %v", err)
			}
		})
	}
}

func TestPasswordHasherCostClamped(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"below minimum", bcrypt.MinCost - 1, bcrypt.DefaultCost},
		{"zero", 0, bcrypt.DefaultCost},
		{"above maximum", bcrypt.MaxCost + 1, bcrypt.DefaultCost},
		{"valid", bcrypt.MinCost, bcrypt.MinCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPasswordHasher(&config.SecurityConfig{BcryptCost: tt.cost})
			if h.cost != tt.want {
				t.Errorf("cost = %d, want %d", h.cost, tt.want)
			}
		})
	}
}
