// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package models defines the data structures shared between the credential
// store, the auth subsystem and the HTTP API.
package models

import "time"

// Role names. Roles are stored per user in the credential store; the Admin
// role is snapshotted into session tokens at issue time.
const (
	// RoleAdmin grants access to user management and password reset.
	RoleAdmin = "Admin"

	// RoleUser is the default role for ordinary accounts.
	RoleUser = "User"
)

// ValidRoles lists the roles accepted by the role grant/revoke operations.
var ValidRoles = []string{RoleUser, RoleAdmin}

// IsValidRole reports whether name is a known role.
func IsValidRole(name string) bool {
	for _, r := range ValidRoles {
		if r == name {
			return true
		}
	}
	return false
}

// User is an identity record owned by the credential store.
//
// Email doubles as the login name and token subject. Nickname is a unique
// display name. PasswordHash is a bcrypt hash and never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
