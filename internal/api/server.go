// Package api provides the HTTP server for the StreaX engine.
// It exposes the stats/tasks/logs registry surface and the /process-day
// entry point consumed by the UI layer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streax-app/streax/internal/app/engine"
	"github.com/streax-app/streax/internal/domain"
)

// Version is the API version string reported on /api/version.
const Version = "0.1.0"

// Server is the StreaX HTTP API server.
type Server struct {
	engine         *engine.Service
	metricsEnabled bool
	hub            *ResultHub // live day-result SSE feed (nil if not set)
}

// NewServer creates a new API server.
func NewServer(eng *engine.Service) *Server {
	return &Server{engine: eng}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetResultHub sets the live day-result SSE hub.
func (s *Server) SetResultHub(h *ResultHub) { s.hub = h }

// ResultHub returns the live result hub (for broadcasting events).
func (s *Server) ResultHub() *ResultHub { return s.hub }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "StreaX engine is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/stats", s.handleGetStats)
			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Get("/logs", s.handleListLogs)
			r.Get("/activity", s.handleActivity)
			r.Post("/process-day", s.handleProcessDay)
		})
		r.Patch("/tasks/{taskID}", s.handleUpdateTask)
		r.Delete("/tasks/{taskID}", s.handleDeleteTask)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Live day-result SSE feed
	if s.hub != nil {
		r.Get("/api/events/live", s.hub.HandleSSE)
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": msg,
		},
	})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Callers can retry 503s; a 409 means the request named a day that is
// already behind the user's cursor.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "unknown_user", err.Error())
	case errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrDayConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// corsMiddleware adds CORS headers for the local frontend dev server.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
