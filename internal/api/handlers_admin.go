// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/frankdean/trip-server-sub001/internal/audit"
	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
	"github.com/frankdean/trip-server-sub001/internal/store"
	"github.com/frankdean/trip-server-sub001/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ResetPassword handles POST /admin/password/reset. Unlike the self-service
// change, no current password is required; the admin role gates access.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if err := h.issuer.ResetPassword(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("password reset failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	admin := auth.PrincipalFromContext(r.Context())
	logging.Ctx(r.Context()).Info().
		Str("admin", admin.Subject).
		Str("email", req.Email).
		Msg("admin password reset")
	h.audit.Record(r.Context(), &audit.Event{
		Type:    audit.EventPasswordReset,
		Actor:   admin.Subject,
		Target:  req.Email,
		Outcome: audit.OutcomeSuccess,
	})
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateUser handles POST /admin/user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("password hashing failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        req.Email,
		Nickname:     req.Nickname,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "Email or nickname already in use")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user creation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.recordAdminEvent(r, audit.EventUserCreated, user.Email)
	respondJSON(w, r, http.StatusCreated, user)
}

// GetUsers handles GET /admin/users with page and page_size parameters.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := h.store.GetUsers(r.Context(), page, pageSize)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("user listing failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	respondJSON(w, r, http.StatusOK, &models.UsersResponse{
		Users:    users,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetUser handles GET /admin/user/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user lookup failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	respondJSON(w, r, http.StatusOK, user)
}

// UpdateUser handles PUT /admin/user/{id}. Only the submitted fields
// change; the password is rotated through the reset endpoint instead.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user lookup failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
		case errors.Is(err, store.ErrConflict):
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "Email or nickname already in use")
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("user update failed")
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		}
		return
	}

	h.recordAdminEvent(r, audit.EventUserModified, user.Email)
	respondJSON(w, r, http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/user/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user deletion failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.recordAdminEvent(r, audit.EventUserDeleted, fmt.Sprintf("user:%d", id))
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GrantRole handles POST /admin/user/{id}/role. Granting a role the user
// already holds succeeds without change.
func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.RoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if err := h.store.AddRole(r.Context(), id, req.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("role grant failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.recordAdminEvent(r, audit.EventRoleAssigned, fmt.Sprintf("user:%d role:%s", id, req.Role))
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// RevokeRole handles DELETE /admin/user/{id}/role/{role}. Revoking an
// unheld role succeeds without change. A revoked admin keeps admin access
// until their current token expires; roles are snapshotted at issue time.
func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	role := chi.URLParam(r, "role")
	if !models.IsValidRole(role) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Unknown role")
		return
	}

	if err := h.store.RemoveRole(r.Context(), id, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("role revoke failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}

	h.recordAdminEvent(r, audit.EventRoleRevoked, fmt.Sprintf("user:%d role:%s", id, role))
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// AuditLog handles GET /admin/audit, returning recent audit events newest
// first.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	events, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("audit listing failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"events": events})
}

// recordAdminEvent writes one audit record for an admin mutation.
func (h *Handler) recordAdminEvent(r *http.Request, eventType audit.EventType, target string) {
	admin := auth.PrincipalFromContext(r.Context())
	actor := ""
	if admin != nil {
		actor = admin.Subject
	}
	h.audit.Record(r.Context(), &audit.Event{
		Type:    eventType,
		Actor:   actor,
		Target:  target,
		Outcome: audit.OutcomeSuccess,
	})
}

// pathID parses the {id} path parameter, responding with 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user id")
		return 0, false
	}
	return id, true
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
