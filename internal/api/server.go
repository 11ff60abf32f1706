// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/encre-app/encre/internal/core/author"
	"github.com/encre-app/encre/internal/core/book"
	"github.com/encre-app/encre/internal/core/chapter"
	"github.com/encre-app/encre/internal/core/character"
	"github.com/encre-app/encre/internal/core/series"
	"github.com/encre-app/encre/internal/platform/constants"
	"github.com/encre-app/encre/internal/platform/middleware"
	"github.com/encre-app/encre/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	Author    *author.Handler
	Series    *series.Handler
	Book      *book.Handler
	Chapter   *chapter.Handler
	Character *character.Handler
}

// Config is the part of the runtime configuration the server needs.
type Config interface {
	middleware.AppConfig
	Port() string
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The rate limiter cleanup loop stops when context is cancelled.
func NewServer(context context.Context, cfg Config, log *slog.Logger, verifier middleware.TokenVerifier, resolver middleware.AuthorResolver, h Handlers) *Server {
	router := NewRouter(context, cfg, log, verifier, resolver, h)

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port(),
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the routing tree on its own so it can be exercised without a listener.
func NewRouter(context context.Context, cfg middleware.AppConfig, log *slog.Logger, verifier middleware.TokenVerifier, resolver middleware.AuthorResolver, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.NewRateLimiter(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst).Handler)
	r.Use(middleware.PanicRecovery)
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		// Catalog routes. A token only widens what the reader sees.
		h.Series.RegisterPublicRoutes(api)
		h.Character.RegisterPublicRoutes(api)

		// Any signed-in user may open an author profile.
		api.Route("/authors", func(account chi.Router) {
			account.Use(middleware.RequireRole(sec.RoleMember))
			h.Author.RegisterAccountRoutes(account)
		})

		// Every resource route is scoped by the author resolved from the
		// access token. The profile, not the role, grants access.
		api.Route("/author", func(owned chi.Router) {
			owned.Use(middleware.RequireRole(sec.RoleMember))
			owned.Use(middleware.RequireAuthor(resolver))

			h.Author.RegisterRoutes(owned)
			h.Series.RegisterRoutes(owned)
			h.Book.RegisterRoutes(owned)
			h.Chapter.RegisterRoutes(owned)
			h.Character.RegisterRoutes(owned)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleModerator))
			h.Series.RegisterAdminRoutes(admin)
		})
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
