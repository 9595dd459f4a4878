// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package config

import (
	"os"
	"testing"
	"time"
)

// validTestConfig returns a config that passes validation.
func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.SessionSecret = "0123456789abcdef0123456789abcdef"
	cfg.Security.ResourceSecret = "fedcba9876543210fedcba9876543210"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing session secret",
			mutate:  func(c *Config) { c.Security.SessionSecret = "" },
			wantErr: true,
		},
		{
			name:    "short session secret",
			mutate:  func(c *Config) { c.Security.SessionSecret = "too-short" },
			wantErr: true,
		},
		{
			name:    "missing resource secret",
			mutate:  func(c *Config) { c.Security.ResourceSecret = "" },
			wantErr: true,
		},
		{
			name: "equal secrets",
			mutate: func(c *Config) {
				c.Security.ResourceSecret = c.Security.SessionSecret
			},
			wantErr: true,
		},
		{
			name:    "zero session TTL",
			mutate:  func(c *Config) { c.Security.SessionTokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "negative resource TTL",
			mutate:  func(c *Config) { c.Security.ResourceTokenTTL = -time.Second },
			wantErr: true,
		},
		{
			name: "renewal window exceeds session TTL",
			mutate: func(c *Config) {
				c.Security.RenewalWindow = c.Security.SessionTokenTTL * 2
			},
			wantErr: true,
		},
		{
			name:    "bcrypt cost too high",
			mutate:  func(c *Config) { c.Security.BcryptCost = 99 },
			wantErr: true,
		},
		{
			name:    "empty listen address",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
		},
		{
			name:    "zero login rate limit",
			mutate:  func(c *Config) { c.Security.LoginRateLimit = 0 },
			wantErr: true,
		},
		{
			name: "initial admin email without password",
			mutate: func(c *Config) {
				c.Security.InitialAdminEmail = "admin@example.com"
			},
			wantErr: true,
		},
		{
			name: "initial admin password without email",
			mutate: func(c *Config) {
				c.Security.InitialAdminPassword = "long-enough-password"
			},
			wantErr: true,
		},
		{
			name: "short initial admin password",
			mutate: func(c *Config) {
				c.Security.InitialAdminEmail = "admin@example.com"
				c.Security.InitialAdminPassword = "short"
			},
			wantErr: true,
		},
		{
			name: "complete initial admin seed",
			mutate: func(c *Config) {
				c.Security.InitialAdminEmail = "admin@example.com"
				c.Security.InitialAdminPassword = "long-enough-password"
			},
			wantErr: false,
		},
		{
			name: "backups enabled without directory",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.Directory = ""
			},
			wantErr: true,
		},
		{
			name: "backups enabled with zero interval",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.Interval = 0
			},
			wantErr: true,
		},
		{
			name:    "backups disabled skip backup checks",
			mutate:  func(c *Config) { c.Backup.Directory = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Security.SessionTokenTTL != 7200*time.Second {
		t.Errorf("SessionTokenTTL = %v, want 7200s", cfg.Security.SessionTokenTTL)
	}
	if cfg.Security.ResourceTokenTTL != 86400*time.Second {
		t.Errorf("ResourceTokenTTL = %v, want 86400s", cfg.Security.ResourceTokenTTL)
	}
	if cfg.Security.XSRFCookieName != "TRIP-XSRF-TOKEN" {
		t.Errorf("XSRFCookieName = %q", cfg.Security.XSRFCookieName)
	}
	if cfg.Security.XSRFHeaderName != "X-Trip-Xsrf-Token" {
		t.Errorf("XSRFHeaderName = %q", cfg.Security.XSRFHeaderName)
	}
	if cfg.Server.LandingRoute != "/app/" {
		t.Errorf("LandingRoute = %q", cfg.Server.LandingRoute)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TRIP_SECURITY_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("TRIP_SECURITY_RESOURCE_SECRET", "fedcba9876543210fedcba9876543210")
	t.Setenv("TRIP_SERVER_ADDR", ":9090")
	t.Setenv("TRIP_SECURITY_SESSION_TOKEN_TTL", "1h")
	t.Setenv("TRIP_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Security.SessionTokenTTL != time.Hour {
		t.Errorf("SessionTokenTTL = %v, want 1h", cfg.Security.SessionTokenTTL)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TRIP_SERVER_ADDR", "server.addr"},
		{"TRIP_SECURITY_SESSION_SECRET", "security.session_secret"},
		{"TRIP_SECURITY_SESSION_TOKEN_TTL", "security.session_token_ttl"},
		{"TRIP_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindConfigFileEnvOverride(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	t.Setenv(ConfigPathEnvVar, f.Name())
	if got := findConfigFile(); got != f.Name() {
		t.Errorf("findConfigFile() = %q, want %q", got, f.Name())
	}
}
