// Package server provides the HTTP API for the content calendar generator:
// the poll-based job endpoints, a synchronous generation endpoint, and the
// calendar read surface.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/pipeline"
	"github.com/jordan/content-calendar/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	registry   jobs.Registry
	dispatcher *jobs.Dispatcher
	runner     *pipeline.Runner
	db         *store.DB // nil when the durable store is not configured
	validate   *validator.Validate
	now        func() time.Time
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance. db may be nil; the read surface then
// serves empty results and generation runs stay in memory.
func New(cfg Config, registry jobs.Registry, dispatcher *jobs.Dispatcher, runner *pipeline.Runner, db *store.DB) *Server {
	s := &Server{
		registry:   registry,
		dispatcher: dispatcher,
		runner:     runner,
		db:         db,
		validate:   validator.New(),
		now:        time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate/start", s.handleStart)
	mux.HandleFunc("GET /api/generate/status", s.handleStatus)
	mux.HandleFunc("GET /api/generate/result", s.handleResult)
	mux.HandleFunc("POST /api/generate-calendar", s.handleGenerateCalendar)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/post/{id}", s.handleGetPost)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for synchronous generation
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Dispatched jobs run to completion; wait so their terminal status is
	// written before the process exits.
	log.Println("Draining in-flight jobs...")
	s.dispatcher.Drain()

	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured route handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, code string) {
	s.jsonResponse(w, status, map[string]any{"ok": false, "error": code})
}
