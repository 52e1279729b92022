// Package server hosts the HTTP surface of unideck: core routes, provider
// routes, and the fault barrier that keeps a panicking handler from taking
// down the host-facing process.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unideck/unideck/internal/registry"
	"github.com/unideck/unideck/internal/version"
	"go.uber.org/zap"
)

// Server is the main unideck server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance.
func New(addr string, reg *registry.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry: reg,
		logger:   logger,
		mux:      mux,
	}

	s.registerCoreRoutes()
	s.mountProviderRoutes()

	return s
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/providers", s.handleProviders)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// mountProviderRoutes registers all provider routes under /api/v1/{provider}/,
// each wrapped in the fault barrier.
func (s *Server) mountProviderRoutes() {
	allRoutes := s.registry.AllRoutes()
	for providerName, routes := range allRoutes {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, providerName, route.Path)
			s.mux.HandleFunc(pattern, s.recoverBarrier(route.Handler))
			s.logger.Debug("mounted route",
				zap.String("provider", providerName),
				zap.String("pattern", pattern),
			)
		}
	}
}

// recoverBarrier isolates faults in a mounted handler: a panic anywhere in
// the request path is logged and answered with a diagnostic problem
// response instead of crashing the process.
func (s *Server) recoverBarrier(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				InternalError(w, "the panel hit an internal fault rendering this view", r.URL.Path)
			}
		}()
		next(w, r)
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying mux, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Unideck-Version", version.Short())
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "unideck",
		"version": version.Map(),
	})
}

// handleProviders returns the list of registered providers.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.registry.All()
	type providerResponse struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	info := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		info = append(info, providerResponse{
			Name:    p.Name(),
			Version: p.Version(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Unideck-Version", version.Short())
	json.NewEncoder(w).Encode(info)
}
