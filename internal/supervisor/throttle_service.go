// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package supervisor

import (
	"context"

	"github.com/frankdean/trip-server-sub001/internal/auth"
)

// ThrottleJanitorService periodically evicts idle login-throttle state so
// the per-client limiter map does not grow without bound.
type ThrottleJanitorService struct {
	throttle *auth.LoginThrottle
}

// NewThrottleJanitorService wraps the throttle's cleanup loop as a
// supervised service.
func NewThrottleJanitorService(throttle *auth.LoginThrottle) *ThrottleJanitorService {
	return &ThrottleJanitorService{throttle: throttle}
}

// Serve implements suture.Service.
func (s *ThrottleJanitorService) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()
	s.throttle.Run(stop)
	return ctx.Err()
}

// String identifies the service in supervisor logs.
func (s *ThrottleJanitorService) String() string {
	return "login-throttle-janitor"
}
