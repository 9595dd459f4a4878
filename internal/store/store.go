// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package store provides the credential store: the durable mapping from
// users to password hashes and role memberships. The auth subsystem consumes
// it through the CredentialStore interface; the production implementation
// is backed by BadgerDB.
package store

import (
	"context"
	"errors"

	"github.com/frankdean/trip-server-sub001/internal/models"
)

// Store errors. Anything else returned from a store method is an internal
// storage failure and is treated as fatal by callers.
var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrConflict indicates a unique constraint (email or nickname) was
	// violated.
	ErrConflict = errors.New("email or nickname already in use")
)

// CredentialStore is the contract the auth subsystem depends on.
//
// All operations are atomic at the store level; no call sequence requires a
// transaction spanning multiple methods. Role mutation is idempotent:
// granting a held role or revoking an unheld role succeeds without change.
type CredentialStore interface {
	// GetPasswordHash returns the stored password hash for the user with
	// the given email, or ErrNotFound.
	GetPasswordHash(ctx context.Context, email string) (string, error)

	// SetPasswordHash replaces the stored password hash for the user with
	// the given email.
	SetPasswordHash(ctx context.Context, email, hash string) error

	// HasRole reports whether the user with the given email holds role.
	// A missing user simply has no roles.
	HasRole(ctx context.Context, email, role string) (bool, error)

	// AddRole grants role to the user with the given id. Idempotent.
	AddRole(ctx context.Context, userID int64, role string) error

	// RemoveRole revokes role from the user with the given id. Idempotent.
	RemoveRole(ctx context.Context, userID int64, role string) error

	// GetUserByEmail returns the user with the given email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the user with the given id, or ErrNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUsers returns one page of users ordered by id, plus the total
	// user count. page is 1-based.
	GetUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error)

	// CreateUser stores a new user, assigning its ID. Returns ErrConflict
	// when the email or nickname is already taken.
	CreateUser(ctx context.Context, user *models.User) error

	// UpdateUser replaces the stored user record. Returns ErrNotFound for
	// unknown ids and ErrConflict when a changed email or nickname
	// collides with another user.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the user with the given id, or ErrNotFound.
	DeleteUser(ctx context.Context, id int64) error
}
