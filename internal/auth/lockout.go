// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/frankdean/trip-server-sub001/internal/config"
)

// LoginThrottle rate-limits login attempts per client address. It runs
// before any credential work so a flood of bad passwords cannot drive
// bcrypt load, and so repeated guessing against one account is slowed.
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginThrottle creates a throttle allowing cfg.LoginRateLimit attempts
// per cfg.LoginRateWindow for each client key.
func NewLoginThrottle(cfg *config.SecurityConfig) *LoginThrottle {
	window := cfg.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	attempts := cfg.LoginRateLimit
	if attempts <= 0 {
		attempts = 5
	}
	return &LoginThrottle{
		limiters: make(map[string]*throttleEntry),
		limit:    rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
		ttl:      10 * window,
	}
}

// Allow reports whether the client identified by key may attempt a login
// now. A denied attempt still consumes nothing further.
func (t *LoginThrottle) Allow(key string) bool {
	t.mu.Lock()
	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	t.mu.Unlock()

	if entry.limiter.Allow() {
		return true
	}
	LoginThrottled.Inc()
	return false
}

// Cleanup drops limiter state for clients idle longer than the retention
// window. Run it periodically from the owning service.
func (t *LoginThrottle) Cleanup() {
	cutoff := time.Now().Add(-t.ttl)
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(t.limiters, key)
		}
	}
}

// Run periodically cleans idle limiter state until stop is closed.
func (t *LoginThrottle) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(t.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Cleanup()
		case <-stop:
			return
		}
	}
}
