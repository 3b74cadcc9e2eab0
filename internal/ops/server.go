// Package ops exposes the operational sidecar listener: liveness and
// build-info endpoints kept off the visitor-facing port.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sitepulse/ports"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Server is the secondary HTTP listener for health and version probes.
type Server struct {
	store  ports.StateStore
	router *chi.Mux
	http   *http.Server
}

// NewServer creates the ops listener bound to addr.
func NewServer(addr string, store ports.StateStore) *Server {
	s := &Server{
		store:  store,
		router: chi.NewRouter(),
	}
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/version", s.handleVersion)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleHealthz reports liveness. The state store is probed with a throwaway
// read so a dead Redis or Postgres shows up here before visitors see it.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.store.GetSession(ctx, "healthz-probe"); err != nil {
		http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"version":"` + Version + `"}`))
}
