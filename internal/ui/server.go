package ui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/thep200/a11y-miner/pkg/log"
)

// Server serves the status and detection endpoints.
type Server struct {
	Logger  log.Logger
	Handler *Handler
	mu      sync.Mutex
	server  *http.Server
	port    int
}

func NewServer(logger log.Logger, handler *Handler, port int) (*Server, error) {
	return &Server{
		Logger:  logger,
		Handler: handler,
		port:    port,
	}, nil
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	mux := http.NewServeMux()
	s.Handler.RegisterRoutes(mux)

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.Logger.Info(context.Background(), "Starting status server on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		s.Logger.Info(ctx, "Shutting down status server")
		return srv.Shutdown(ctx)
	}
	return nil
}
