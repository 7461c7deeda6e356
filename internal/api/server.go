// Package api exposes health, stats and metrics endpoints for the worker
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	javacgnats "github.com/fastenhq/javacg/internal/nats"
	"github.com/fastenhq/javacg/internal/store"
)

// Server represents the API server
type Server struct {
	router *chi.Mux
	nats   *javacgnats.Client
	store  *store.Store
}

// ServerConfig configures the API server
type ServerConfig struct {
	NATS  *javacgnats.Client // nil disables the NATS readiness check
	Store *store.Store       // nil disables stats and revision endpoints
}

// NewServer creates a new API server
func NewServer(cfg ServerConfig) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		nats:   cfg.NATS,
		store:  cfg.Store,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readyCheck)

	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.getStats)
		r.Route("/revisions", func(r chi.Router) {
			r.Get("/", s.listRevisions)
			r.Get("/{revisionID}", s.getRevision)
		})
	})
}

// Health check handlers
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyCheck(w http.ResponseWriter, r *http.Request) {
	if s.nats != nil {
		if err := s.nats.HealthCheck(); err != nil {
			respondError(w, http.StatusServiceUnavailable, "NATS not available")
			return
		}
	}

	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database not available")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
