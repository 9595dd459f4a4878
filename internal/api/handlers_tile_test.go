// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frankdean/trip-server-sub001/internal/models"
)

func TestTileEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "user@trip.test", "traveller", "secret123", models.RoleUser)
	tokens, _ := ts.login(t, "user@trip.test", "secret123")

	t.Run("resource token grants access", func(t *testing.T) {
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tile/3/4/2?access_token="+tokens.ResourceToken, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("content type = %q, want image/png", ct)
		}
		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("response is not a decodable png: %v", err)
		}
		if img.Bounds().Dx() != tileSize || img.Bounds().Dy() != tileSize {
			t.Errorf("tile is %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tileSize, tileSize)
		}
	})

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"no token", "/tile/3/4/2", http.StatusUnauthorized},
		{"garbage token", "/tile/3/4/2?access_token=nonsense", http.StatusUnauthorized},
		{"session token rejected", "/tile/3/4/2?access_token=" + tokens.Token, http.StatusUnauthorized},
		{"zoom out of range", "/tile/23/0/0?access_token=" + tokens.ResourceToken, http.StatusBadRequest},
		{"x out of range", "/tile/2/4/0?access_token=" + tokens.ResourceToken, http.StatusBadRequest},
		{"negative y", "/tile/2/0/-1?access_token=" + tokens.ResourceToken, http.StatusBadRequest},
		{"non-numeric", "/tile/a/b/c?access_token=" + tokens.ResourceToken, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ts.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
