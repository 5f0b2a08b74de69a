// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RBAC-Project Contributors

// Package server exposes the auth service over HTTP with JSON request and
// response bodies.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/Chandrateja1212/RBAC-Project/internal/auth"
	"github.com/Chandrateja1212/RBAC-Project/internal/observability"
)

// Config holds the dependencies for a Server.
type Config struct {
	// Addr is the listen address in "host:port" format.
	Addr string

	// Auth handles register, login, and logout.
	Auth *auth.Service

	// Guard gates the protected routes.
	Guard *auth.Guard

	// Logger is optional; a discard logger is used when nil.
	Logger *slog.Logger

	// Metrics is optional; no metrics are recorded when nil.
	Metrics *observability.Metrics
}

// Server is the HTTP front of the auth service.
type Server struct {
	addr       string
	auth       *auth.Service
	guard      *auth.Guard
	logger     *slog.Logger
	metrics    *observability.Metrics
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// New creates a Server. Returns an error if a required dependency is nil.
func New(cfg Config) (*Server, error) {
	if cfg.Auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if cfg.Guard == nil {
		return nil, oops.Errorf("guard is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		addr:    cfg.Addr,
		auth:    cfg.Auth,
		guard:   cfg.Guard,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// Handler returns the full route tree. Exposed for httptest-based tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout",
		s.requireRoles(s.handleLogout, auth.RoleAdmin, auth.RoleManager, auth.RoleUser))

	// Role-gated routes. Membership is exact: admin is listed everywhere
	// it should pass, nothing is implied by hierarchy.
	mux.Handle("GET /api/users/admin",
		s.requireRoles(s.handleWelcome("Welcome Admin"), auth.RoleAdmin))
	mux.Handle("GET /api/users/manager",
		s.requireRoles(s.handleWelcome("Welcome Manager"), auth.RoleAdmin, auth.RoleManager))
	mux.Handle("GET /api/users/user",
		s.requireRoles(s.handleWelcome("Welcome User"), auth.RoleAdmin, auth.RoleManager, auth.RoleUser))

	mux.HandleFunc("/", s.handleNotFound)

	return s.withRequestLogging(mux)
}

// Start begins serving requests.
// It returns an error channel that receives any error from the HTTP server
// after startup; the channel is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_http_server").Wrap(err)
		}
	}

	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
