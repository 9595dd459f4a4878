// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/frankdean/trip-server-sub001/internal/models"
)

func TestAdminDeniedLikeUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "user@trip.test", "traveller", "secret123", models.RoleUser)
	tokens, xsrf := ts.login(t, "user@trip.test", "secret123")

	// The admin-denied response must be byte-identical to the unmatched
	// route response, so probing reveals nothing.
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/users", nil, tokens.Token, xsrf))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	denied := w.Body.String()

	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/no/such/route", nil, tokens.Token, xsrf))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if denied != w.Body.String() {
		t.Errorf("denied body %q differs from not-found body %q", denied, w.Body.String())
	}
}

func TestAdminPasswordReset(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin@trip.test", "chief", "adminpass1", models.RoleUser, models.RoleAdmin)
	ts.seedUser(t, "user@trip.test", "traveller", "secret123", models.RoleUser)
	tokens, xsrf := ts.login(t, "admin@trip.test", "adminpass1")

	body := []byte(`{"email":"user@trip.test","password":"resetpass9"}`)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, "/admin/password/reset", body, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// Reset takes effect without the old password.
	ts.login(t, "user@trip.test", "resetpass9")

	t.Run("unknown user", func(t *testing.T) {
		body := []byte(`{"email":"nobody@trip.test","password":"resetpass9"}`)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, "/admin/password/reset", body, tokens.Token, xsrf))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestAdminUserCRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin@trip.test", "chief", "adminpass1", models.RoleUser, models.RoleAdmin)
	tokens, xsrf := ts.login(t, "admin@trip.test", "adminpass1")

	// Create.
	body := []byte(`{"email":"new@trip.test","nickname":"newbie","firstname":"New","lastname":"Person","password":"newpass123"}`)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, "/admin/user", body, tokens.Token, xsrf))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.User
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created user: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created user has no id")
	}
	if len(created.Roles) != 1 || created.Roles[0] != models.RoleUser {
		t.Errorf("default roles = %v, want [User]", created.Roles)
	}

	// The password hash never appears in responses.
	if strings.Contains(w.Body.String(), "password") {
		t.Error("created-user response leaks password material")
	}

	// Duplicate email conflicts.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, "/admin/user", body, tokens.Token, xsrf))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want %d", w.Code, http.StatusConflict)
	}

	// Read.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, fmt.Sprintf("/admin/user/%d", created.ID), nil, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	// Update.
	update := []byte(`{"nickname":"renamed"}`)
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPut, fmt.Sprintf("/admin/user/%d", created.ID), update, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated models.User
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode updated user: %v", err)
	}
	if updated.Nickname != "renamed" {
		t.Errorf("nickname = %q, want %q", updated.Nickname, "renamed")
	}
	if updated.Email != "new@trip.test" {
		t.Errorf("email changed unexpectedly to %q", updated.Email)
	}

	// List.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/users?page=1&page_size=10", nil, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listing models.UsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Total != 2 {
		t.Errorf("total = %d, want 2", listing.Total)
	}

	// Delete.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodDelete, fmt.Sprintf("/admin/user/%d", created.ID), nil, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, fmt.Sprintf("/admin/user/%d", created.ID), nil, tokens.Token, xsrf))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// Garbage id.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/user/banana", nil, tokens.Token, xsrf))
	if w.Code != http.StatusBadRequest {
		t.Errorf("garbage id status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAdminAuditLog(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin@trip.test", "chief", "adminpass1", models.RoleUser, models.RoleAdmin)
	ts.seedUser(t, "user@trip.test", "traveller", "secret123", models.RoleUser)
	tokens, xsrf := ts.login(t, "admin@trip.test", "adminpass1")

	// A failed login and an admin reset both leave audit records.
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"user@trip.test","password":"wrongpass"}`))
	r.Header.Set("Content-Type", "application/json")
	ts.handler.ServeHTTP(httptest.NewRecorder(), r)

	body := []byte(`{"email":"user@trip.test","password":"resetpass9"}`)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, "/admin/password/reset", body, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/audit", nil, tokens.Token, xsrf))
	if w.Code != http.StatusOK {
		t.Fatalf("audit status = %d, body %s", w.Code, w.Body.String())
	}

	var listing struct {
		Events []struct {
			Type    string `json:"type"`
			Actor   string `json:"actor"`
			Outcome string `json:"outcome"`
		} `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode audit listing: %v", err)
	}

	types := make(map[string]bool)
	for _, event := range listing.Events {
		types[event.Type] = true
	}
	for _, want := range []string{"auth.success", "auth.failure", "auth.password_reset"} {
		if !types[want] {
			t.Errorf("audit log missing %q event, got %v", want, types)
		}
	}
}

func TestAdminRoleLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "admin@trip.test", "chief", "adminpass1", models.RoleUser, models.RoleAdmin)
	user := ts.seedUser(t, "user@trip.test", "traveller", "secret123", models.RoleUser)
	tokens, xsrf := ts.login(t, "admin@trip.test", "adminpass1")

	grant := func() int {
		body := []byte(`{"role":"Admin"}`)
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodPost, fmt.Sprintf("/admin/user/%d/role", user.ID), body, tokens.Token, xsrf))
		return w.Code
	}
	revoke := func() int {
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodDelete, fmt.Sprintf("/admin/user/%d/role/Admin", user.ID), nil, tokens.Token, xsrf))
		return w.Code
	}

	// Grant is idempotent.
	if code := grant(); code != http.StatusOK {
		t.Fatalf("grant status = %d", code)
	}
	if code := grant(); code != http.StatusOK {
		t.Errorf("second grant status = %d, want %d", code, http.StatusOK)
	}

	got, err := ts.store.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	admins := 0
	for _, role := range got.Roles {
		if role == models.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("admin role present %d times, want 1", admins)
	}

	// The grant takes effect at the next login, not mid-session.
	userTokens, userXSRF := ts.login(t, "user@trip.test", "secret123")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/users", nil, userTokens.Token, userXSRF))
	if w.Code != http.StatusOK {
		t.Errorf("granted admin denied after fresh login: status = %d", w.Code)
	}

	// Revoke is idempotent.
	if code := revoke(); code != http.StatusOK {
		t.Fatalf("revoke status = %d", code)
	}
	if code := revoke(); code != http.StatusOK {
		t.Errorf("second revoke status = %d, want %d", code, http.StatusOK)
	}

	// The revoked user's existing token still carries the admin snapshot.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/users", nil, userTokens.Token, userXSRF))
	if w.Code != http.StatusOK {
		t.Errorf("token snapshot not honoured after revoke: status = %d", w.Code)
	}

	// A fresh login after revocation is back to plain user.
	userTokens, userXSRF = ts.login(t, "user@trip.test", "secret123")
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodGet, "/admin/users", nil, userTokens.Token, userXSRF))
	if w.Code != http.StatusNotFound {
		t.Errorf("revoked admin still allowed after fresh login: status = %d", w.Code)
	}

	// Unknown role in the path.
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, ts.authedRequest(http.MethodDelete, fmt.Sprintf("/admin/user/%d/role/Superuser", user.ID), nil, tokens.Token, xsrf))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown role status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
