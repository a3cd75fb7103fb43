// Package server is the HTTP surface over the agent runtime: middleware
// chain, routes, and the request handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Marcoby-Dev-Ops/nexus-agent-runtime/internal/metrics"
)

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
	http   *http.Server
}

// New builds the router with the full middleware chain and registers the
// agent API routes on it.
func New(port int, logger *slog.Logger, handler *Handler) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(TimeoutMiddleware(60 * time.Second))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "nexus-agent-runtime")
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/agent/chat", handler.Chat)
		r.Get("/agent/context", handler.Context)
		r.Get("/agent/chips", handler.Chips)
		r.Get("/runtime", handler.RuntimeInfo)
	})
	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", metrics.Handler())

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails. Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
