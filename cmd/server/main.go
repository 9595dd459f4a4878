// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

// Package main is the entry point for the TRIP server.
//
// TRIP is a multi-user trip recording and itinerary planning service. This
// binary serves its authentication and session core: login, session and
// resource tokens, XSRF double-submit protection, password management and
// the admin user-administration API, over a BadgerDB credential store.
//
// # Startup order
//
//  1. Configuration: built-in defaults, then a YAML config file, then
//     TRIP_-prefixed environment variables (Koanf v2)
//  2. Logging: zerolog, JSON or console format
//  3. Credential store: BadgerDB at database.path (or in-memory)
//  4. Auth subsystem: hasher, issuer, request authenticator, throttle
//  5. Authorization: Casbin enforcer from the embedded policy
//  6. HTTP server under a suture supervisor
//
// # Configuration
//
// The two signing secrets are mandatory and must differ:
//
//	export TRIP_SECURITY_SESSION_SECRET=...   # 32+ characters
//	export TRIP_SECURITY_RESOURCE_SECRET=...  # 32+ characters
//
// An initial admin account can be seeded on first start:
//
//	export TRIP_SECURITY_INITIAL_ADMIN_EMAIL=admin@example.com
//	export TRIP_SECURITY_INITIAL_ADMIN_PASSWORD=...
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections and in-flight requests get server.shutdown_timeout
// to complete before the store is closed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankdean/trip-server-sub001/internal/api"
	"github.com/frankdean/trip-server-sub001/internal/audit"
	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/authz"
	"github.com/frankdean/trip-server-sub001/internal/backup"
	"github.com/frankdean/trip-server-sub001/internal/config"
	"github.com/frankdean/trip-server-sub001/internal/logging"
	"github.com/frankdean/trip-server-sub001/internal/models"
	"github.com/frankdean/trip-server-sub001/internal/store"
	"github.com/frankdean/trip-server-sub001/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("db_path", cfg.Database.Path).
		Bool("db_in_memory", cfg.Database.InMemory).
		Msg("Starting TRIP server")

	db, err := store.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open credential store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing credential store")
		}
	}()

	st, err := store.NewBadgerStore(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize credential store")
	}

	hasher := auth.NewPasswordHasher(&cfg.Security)
	issuer := auth.NewSessionIssuer(&cfg.Security, st, hasher)
	authenticator := auth.NewRequestAuthenticator(&cfg.Security)
	throttle := auth.NewLoginThrottle(&cfg.Security)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}

	if err := seedInitialAdmin(context.Background(), cfg, st, hasher); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed initial admin account")
	}

	recorder := audit.NewBadgerRecorder(db)
	handler := api.NewHandler(cfg, issuer, st, hasher, throttle, recorder)
	router := api.NewRouter(cfg, handler, authenticator, enforcer)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(supervisorLogger(cfg), treeCfg)
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.Add(supervisor.NewThrottleJanitorService(throttle))
	if cfg.Backup.Enabled {
		tree.Add(backup.NewService(backup.NewManager(db, cfg.Backup)))
		logging.Info().
			Str("directory", cfg.Backup.Directory).
			Dur("interval", cfg.Backup.Interval).
			Msg("Scheduled store backups enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor terminated")
	}
	logging.Info().Msg("Shutdown complete")
}

// seedInitialAdmin creates the configured admin account when the store
// does not already hold it. An existing account is left untouched, so a
// forgotten unset variable cannot clobber a changed password.
func seedInitialAdmin(ctx context.Context, cfg *config.Config, st store.CredentialStore, hasher *auth.PasswordHasher) error {
	email := cfg.Security.InitialAdminEmail
	if email == "" {
		return nil
	}

	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.Security.InitialAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        email,
		Nickname:     "admin",
		FirstName:    "Admin",
		LastName:     "User",
		PasswordHash: hash,
		Roles:        []string{models.RoleUser, models.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return err
	}
	logging.Info().Str("email", email).Msg("Seeded initial admin account")
	return nil
}

// supervisorLogger builds the slog logger the suture event hook consumes,
// matching the configured log format.
func supervisorLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.Logging.Format == "console" {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}
