// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package authz provides role-based authorization using Casbin. Request
// authentication yields a principal with a role snapshot; this package
// decides what that principal may reach.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer wraps a Casbin enforcer loaded from the embedded model and
// policy. The policy ships with the binary; there is no runtime policy
// administration surface.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses the embedded CSV policy into the enforcer.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) != 4 || fields[0] != "p" {
			return fmt.Errorf("malformed policy line: %q", line)
		}
		if _, err := enforcer.AddPolicy(fields[1], fields[2], fields[3]); err != nil {
			return fmt.Errorf("failed to load policy line %q: %w", line, err)
		}
	}
	return nil
}

// Allowed reports whether the principal may perform action on object. The
// principal's roles are reconstructed from its token snapshot: every
// authenticated user holds User, admins additionally hold Admin. Anonymous
// principals hold no roles at all.
func (e *Enforcer) Allowed(principal *auth.Principal, object, action string) (bool, error) {
	if principal == nil || principal.IsAnonymous() {
		return false, nil
	}

	roles := []string{models.RoleUser}
	if principal.Admin {
		roles = append(roles, models.RoleAdmin)
	}

	for _, role := range roles {
		ok, err := e.enforcer.Enforce(role, object, action)
		if err != nil {
			return false, fmt.Errorf("enforcement failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
