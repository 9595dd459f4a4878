// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/frankdean/trip-server-sub001/internal/logging"
)

const tileSize = 256

// tileCacheKey builds the cache key for a tile.
func tileCacheKey(z, x, y int) string {
	return strconv.Itoa(z) + "/" + strconv.Itoa(x) + "/" + strconv.Itoa(y)
}

// Tile handles GET /tile/{z}/{x}/{y}. Map tiles are fetched by image
// elements that cannot attach request headers, so this route sits behind
// resource authentication with the token in the URL.
//
// The current implementation serves a generated placeholder tile; the
// upstream tile cache is out of scope here. The authentication contract is
// what matters: no valid resource token, no tile.
func (h *Handler) Tile(w http.ResponseWriter, r *http.Request) {
	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errZ != nil || errX != nil || errY != nil || !validTile(z, x, y) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid tile coordinates")
		return
	}

	key := tileCacheKey(z, x, y)
	data, ok := h.tiles.Get(key)
	if !ok {
		var buf bytes.Buffer
		if err := png.Encode(&buf, placeholderTile(z, x, y)); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("tile encoding failed")
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
			return
		}
		data = buf.Bytes()
		h.tiles.Add(key, data)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort body write
	w.Write(data)
}

// validTile checks the slippy-map coordinate ranges: at zoom z both axes
// run from 0 to 2^z-1.
func validTile(z, x, y int) bool {
	if z < 0 || z > 22 {
		return false
	}
	max := 1 << uint(z)
	return x >= 0 && x < max && y >= 0 && y < max
}

// placeholderTile renders a flat tile with a one-pixel border, shaded by
// coordinate so adjacent tiles are distinguishable during development.
func placeholderTile(z, x, y int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
	fill := color.RGBA{R: 0xE8, G: 0xF0, B: uint8(0xD0 + (x+y+z)%0x20), A: 0xFF}
	border := color.RGBA{R: 0xB0, G: 0xB8, B: 0xB0, A: 0xFF}
	for py := 0; py < tileSize; py++ {
		for px := 0; px < tileSize; px++ {
			if px == 0 || py == 0 || px == tileSize-1 || py == tileSize-1 {
				img.Set(px, py, border)
			} else {
				img.Set(px, py, fill)
			}
		}
	}
	return img
}
