// Package api exposes the retrieval and catalog services over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ports holds the services the API exposes.
type Ports struct {
	Retrieval driving.RetrievalService
	Catalog   driving.CatalogService
}

// Validate checks that all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return errors.New("ports is nil")
	}
	if p.Retrieval == nil {
		return errors.New("retrieval service is required")
	}
	if p.Catalog == nil {
		return errors.New("catalog service is required")
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	ports  *Ports
	router *mux.Router
}

// NewServer creates the API server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{ports: ports, router: mux.NewRouter()}
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/get-works", s.handleGetWorks).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	return s, nil
}

// Handler returns the underlying HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("API listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
