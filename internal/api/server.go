// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/contactbook/internal/contacts"
	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/config"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/metrics"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/users/account"
	"github.com/taibuivan/contactbook/internal/users/auth"
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
	// Health serves /, /health, /ready and /api/healthchecker.
	Health *HealthHandlers

	// Resolver authenticates every route outside /api/auth.
	Resolver *auth.Resolver

	// Auth handles signup, login, tokens and email confirmation.
	Auth *auth.Handler

	// Account serves the caller's profile and avatar.
	Account *account.Handler

	// Contacts manages the caller's address book.
	Contacts *contacts.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. m may be nil to disable metrics.
func NewServer(cfg *config.Config, log *slog.Logger, m *metrics.Metrics, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.ProcessTime())
	r.Use(middleware.Instrument(m))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.StripSlashes)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFoundMsg("Not Found"))
	})
	r.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		respond.JSON(writer, http.StatusMethodNotAllowed, respond.ErrorEnvelope{
			Error: "Method Not Allowed",
			Code:  apperr.CodeBadRequest,
		})
	})

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration.
	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Liveness)
	r.Get("/ready", h.Health.Readiness)
	r.Get("/api/healthchecker", h.Health.HealthChecker)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		api.Group(func(protected chi.Router) {
			protected.Use(h.Resolver.Middleware())
			protected.Mount("/users", h.Account.Routes())
			protected.Mount("/contacts", h.Contacts.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
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

// Run serves until ctx is cancelled, then shuts down within [constants.ShutdownTimeout].
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := s.Shutdown(constants.ShutdownTimeout); err != nil {
		return err
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
