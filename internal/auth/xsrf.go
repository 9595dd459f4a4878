// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// DeriveXSRF computes the XSRF companion value for an encoded session
// token: base64url(HMAC-SHA256(key, token)).
//
// The value is delivered in a plain cookie while the token itself travels
// in the Authorization header, implementing the double-submit pattern: a
// cross-site form submission can make the browser attach the cookie but
// cannot read it into the custom header, and without the signing key the
// value cannot be forged for a chosen token. The derivation is
// deterministic, so it can be recomputed on every request without state.
func DeriveXSRF(encodedToken string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(encodedToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CheckXSRF reports whether got is the XSRF value derived from
// encodedToken under key. The comparison is constant-time.
func CheckXSRF(got, encodedToken string, key []byte) bool {
	want := DeriveXSRF(encodedToken, key)
	return hmac.Equal([]byte(got), []byte(want))
}
