// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frankdean/trip-server-sub001/internal/auth"
	"github.com/frankdean/trip-server-sub001/internal/authz"
	"github.com/frankdean/trip-server-sub001/internal/config"
)

// Router assembles the HTTP surface from its middleware and handlers.
type Router struct {
	cfg           *config.Config
	handler       *Handler
	authenticator *auth.RequestAuthenticator
	enforcer      *authz.Enforcer
}

// NewRouter creates a Router.
func NewRouter(cfg *config.Config, handler *Handler, authenticator *auth.RequestAuthenticator, enforcer *authz.Enforcer) *Router {
	return &Router{
		cfg:           cfg,
		handler:       handler,
		authenticator: authenticator,
		enforcer:      enforcer,
	}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog())
	r.Use(Metrics())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", router.cfg.Security.XSRFHeaderName},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", router.handler.Landing)
	r.Handle("/metrics", promhttp.Handler())

	// The login throttle inside the handler is per-client and survives
	// across windows; the httprate limit is a second, coarser ceiling
	// against floods from one address.
	r.With(httprate.Limit(
		router.cfg.Security.LoginRateLimit*4,
		router.cfg.Security.LoginRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)).Post("/login", router.handler.Login)

	// Fully authenticated routes: bearer token plus XSRF double submit.
	r.Group(func(r chi.Router) {
		r.Use(router.authenticator.RequireFullAuth)

		r.Get("/login/token/renew", router.handler.RenewToken)
		r.Put("/account/password", router.handler.ChangePassword)

		// Admin subtree. Denials are indistinguishable from unknown
		// routes; see the authz middleware.
		r.Group(func(r chi.Router) {
			mw := authz.NewMiddleware(router.enforcer, notFound)
			r.Use(mw.RequireAdmin)

			r.Post("/admin/password/reset", router.handler.ResetPassword)
			r.Get("/admin/users", router.handler.GetUsers)
			r.Post("/admin/user", router.handler.CreateUser)
			r.Get("/admin/user/{id}", router.handler.GetUser)
			r.Put("/admin/user/{id}", router.handler.UpdateUser)
			r.Delete("/admin/user/{id}", router.handler.DeleteUser)
			r.Post("/admin/user/{id}/role", router.handler.GrantRole)
			r.Delete("/admin/user/{id}/role/{role}", router.handler.RevokeRole)
			r.Get("/admin/audit", router.handler.AuditLog)
		})
	})

	// Resource-authenticated routes: token in the URL, no headers needed.
	r.Group(func(r chi.Router) {
		r.Use(router.authenticator.RequireResourceAuth)

		r.Get("/tile/{z}/{x}/{y}", router.handler.Tile)
	})

	return r
}
