package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/michaelbrown/runcheck/internal/config"
	"github.com/michaelbrown/runcheck/internal/runner"
	"github.com/michaelbrown/runcheck/internal/storage"
)

// Server is the HTTP server for the runcheck API.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	runner  *runner.Runner
	codeDir string
	router  chi.Router
	http    *http.Server

	// The runner contract is one execution at a time; concurrent API
	// requests queue here.
	execMu sync.Mutex
}

// New creates a new Server.
func New(cfg *config.Config, store storage.Store, r *runner.Runner, codeDir string) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		runner:  r,
		codeDir: codeDir,
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// WebSocket first (no JSON content-type)
		r.Get("/execute/ws", s.handleExecuteWS)

		r.Group(func(r chi.Router) {
			r.Use(jsonContentType)

			r.Post("/execute", s.handleExecute)

			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
			r.Delete("/runs/{id}", s.handleDeleteRun)

			r.Get("/languages", s.handleListLanguages)
		})
	})
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Printf("runcheck server starting on http://localhost%s", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
