// Package web provides the HTTP server and handlers for the data API.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/datatx/internal/config"
	"github.com/JonMunkholm/datatx/internal/core"
	"github.com/JonMunkholm/datatx/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the data API.
type Server struct {
	cfg       config.Config
	validator core.Validator
	limiter   *core.Limiter
	router    *chi.Mux
	server    *http.Server
}

// NewServer builds the router from a copy of cfg. Routes and CORS policy are
// fixed for the lifetime of the Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:       *cfg,
		validator: core.Validator{EnforceEmailFormat: cfg.Validation.EnforceEmailFormat},
		limiter:   core.NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.CORS(s.cfg.CORS))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(handleNotFound)
	s.router.MethodNotAllowed(handleMethodNotAllowed)

	s.router.Get("/", s.handleWelcome)
	s.router.Post("/validate", s.handleValidate)
	s.router.Post("/transform-date", s.handleTransformDate)
	s.router.Post("/upload-clean", s.handleUploadClean)
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight uploads, then gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if status := s.limiter.Status(); status.Active > 0 {
		slog.Info("waiting for uploads to complete", "active", status.Active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("uploads did not complete in time", "error", err)
		}
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Limiter returns the upload limiter.
func (s *Server) Limiter() *core.Limiter {
	return s.limiter
}
