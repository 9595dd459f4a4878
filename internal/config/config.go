// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package config provides layered configuration for the TRIP server using
// Koanf v2. Settings are merged from built-in defaults, an optional YAML
// config file and TRIP_-prefixed environment variables, with environment
// variables taking the highest priority.
package config

import (
	"time"

	"github.com/frankdean/trip-server-sub001/internal/backup"
)

// Config is the root configuration for the TRIP server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Backup   backup.Config  `koanf:"backup"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ReadTimeout and WriteTimeout bound request processing.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// LandingRoute is where unauthenticated root requests are redirected.
	LandingRoute string `koanf:"landing_route"`
}

// SecurityConfig holds authentication and session settings.
//
// SessionSecret and ResourceSecret are independent signing keys. Session
// tokens are signed with SessionSecret; the lower-privilege resource tokens
// (used in URLs for endpoints that cannot carry headers) are signed with
// ResourceSecret, so compromise or rotation of one channel does not affect
// the other.
type SecurityConfig struct {
	// SessionSecret signs session tokens and derives XSRF values.
	// Minimum 32 characters.
	SessionSecret string `koanf:"session_secret"`

	// ResourceSecret signs resource tokens. Minimum 32 characters and must
	// differ from SessionSecret.
	ResourceSecret string `koanf:"resource_secret"`

	// SessionTokenTTL is the session token lifetime.
	SessionTokenTTL time.Duration `koanf:"session_token_ttl"`

	// ResourceTokenTTL is the resource token lifetime. Resource tokens are
	// long-lived because they are embedded in URLs that may be cached.
	ResourceTokenTTL time.Duration `koanf:"resource_token_ttl"`

	// RenewalWindow is the trailing portion of a session token's lifetime
	// during which clients are expected to call the renew endpoint.
	RenewalWindow time.Duration `koanf:"renewal_window"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// XSRFCookieName is the cookie carrying the XSRF value. Not HttpOnly:
	// client script must read it and echo it in XSRFHeaderName.
	XSRFCookieName string `koanf:"xsrf_cookie_name"`

	// XSRFHeaderName is the request header that must match the cookie.
	XSRFHeaderName string `koanf:"xsrf_header_name"`

	// CookieSecure sets the Secure flag on the XSRF cookie.
	CookieSecure bool `koanf:"cookie_secure"`

	// LoginRateLimit is the number of login attempts allowed per client
	// per LoginRateWindow before requests are throttled.
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`

	// InitialAdminEmail and InitialAdminPassword seed an admin account at
	// startup when the store does not yet contain that user. Both must be
	// set together; leaving them empty skips seeding.
	InitialAdminEmail    string `koanf:"initial_admin_email"`
	InitialAdminPassword string `koanf:"initial_admin_password"`
}

// DatabaseConfig holds credential store settings.
type DatabaseConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Test use only.
	InMemory bool `koanf:"in_memory"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
			LandingRoute:    "/app/",
		},
		Security: SecurityConfig{
			SessionSecret:    "",
			ResourceSecret:   "",
			SessionTokenTTL:  7200 * time.Second,
			ResourceTokenTTL: 86400 * time.Second,
			RenewalWindow:    3600 * time.Second,
			BcryptCost:       12,
			XSRFCookieName:   "TRIP-XSRF-TOKEN",
			XSRFHeaderName:   "X-Trip-Xsrf-Token",
			CookieSecure:     true,
			LoginRateLimit:   5,
			LoginRateWindow:  time.Minute,
		},
		Database: DatabaseConfig{
			Path:     "/data/trip",
			InMemory: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Backup: backup.Config{
			Enabled:    false,
			Directory:  "/data/trip-backups",
			Interval:   24 * time.Hour,
			MaxBackups: 7,
		},
	}
}
