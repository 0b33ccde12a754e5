package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/slok/deskshell/internal/log"
)

// ServerConfig is the configuration for the gateway HTTP server.
type ServerConfig struct {
	ListenAddr string
	Handler    http.Handler
	Logger     log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Handler == nil {
		return fmt.Errorf("handler is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "gateway.Server"})
	return nil
}

// Server serves the gateway over HTTP.
type Server struct {
	listenAddr string
	server     *http.Server
	logger     log.Logger
}

// NewServer returns a new gateway HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Server{
		listenAddr: cfg.ListenAddr,
		logger:     cfg.Logger,
		server: &http.Server{
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// fetch-status waits for the backend readiness probe.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	return s.Serve(l)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Infof("Gateway listening on %s", l.Addr())
	err := s.server.Serve(l)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in flight requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debugf("Shutting down gateway")
	return s.server.Shutdown(ctx)
}
