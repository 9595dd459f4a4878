// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package models

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=120"`
}

// TokenResponse is returned by login and renew. The XSRF value travels in
// the TRIP-XSRF-TOKEN cookie, not in the body.
type TokenResponse struct {
	Token         string `json:"token"`
	ResourceToken string `json:"resourceToken"`
}

// ChangePasswordRequest is the body of PUT /account/password.
type ChangePasswordRequest struct {
	Current  string `json:"current" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=120"`
}

// ResetPasswordRequest is the body of POST /admin/password/reset.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=120"`
}

// CreateUserRequest is the body of POST /admin/user.
type CreateUserRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Nickname  string   `json:"nickname" validate:"required,tripnickname,max=120"`
	FirstName string   `json:"firstname" validate:"required,tripname,max=120"`
	LastName  string   `json:"lastname" validate:"required,tripname,max=120"`
	Password  string   `json:"password" validate:"required,min=8,max=120"`
	Roles     []string `json:"roles" validate:"omitempty,dive,oneof=User Admin"`
}

// UpdateUserRequest is the body of PUT /admin/user/{id}. Empty fields are
// left unchanged.
type UpdateUserRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Nickname  string `json:"nickname" validate:"omitempty,tripnickname,max=120"`
	FirstName string `json:"firstname" validate:"omitempty,tripname,max=120"`
	LastName  string `json:"lastname" validate:"omitempty,tripname,max=120"`
}

// RoleRequest is the body of POST /admin/user/{id}/role.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=User Admin"`
}

// UsersResponse is the paged listing returned by GET /admin/users.
type UsersResponse struct {
	Users    []*User `json:"users"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Total    int     `json:"total"`
}

// APIError is the error payload of an ErrorResponse.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *APIError `json:"error"`
}
