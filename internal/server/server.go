package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/physioflow/internal/capture"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/server/api"
	"github.com/ayusman/physioflow/internal/session"
	"github.com/ayusman/physioflow/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	Registry   *exercise.Registry
	Controller *session.Controller
}

// Server represents the HTTP server for the PhysioFlow application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register exercise API handler if a registry is configured
	if s.config.Registry != nil {
		exerciseHandler := api.NewExerciseHandler(s.config.Registry, s.config.Store)
		s.mux.Handle("/api/exercises", exerciseHandler)
		s.mux.Handle("/api/exercises/", exerciseHandler)
	}

	// Register session API and WebSocket handlers if a controller is
	// configured
	if s.config.Controller != nil {
		sessionHandler := api.NewSessionHandler(s.config.Controller, s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)

		s.mux.Handle("/api/detect", NewDetectHandler(s.config.Controller))
		s.mux.Handle("/api/telemetry", NewTelemetryHandler(s.config.Controller))
	}

	// Register camera stream endpoint if a camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
