// Package server runs the HTTP API until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetapp/internal/app"
	"budgetapp/internal/logger"
	"budgetapp/internal/middleware"
	"budgetapp/internal/router"
)

// ShutdownTimeout bounds how long in-flight requests may take after a
// shutdown signal.
const ShutdownTimeout = 30 * time.Second

// Server is an http.Server with production timeouts.
type Server struct {
	*http.Server
}

// New creates a server for handler listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{Server: &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}}
}

// NewForApp builds the API router for a and wraps it in a server on the
// configured port.
func NewForApp(a *app.App) *Server {
	cfg := a.Config
	handler := router.New(router.Deps{
		Auth:          a.Auth,
		Ledger:        a.Ledger,
		Theme:         a.Theme,
		Audit:         a.Audit,
		Tokens:        middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpirationDur),
		Location:      cfg.Location,
		MetricsAPIKey: cfg.MetricsAPIKey,
	})
	return New(":"+cfg.Port, handler)
}

// Run listens on Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("server")
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Listening on %s", ln.Addr())
		if err := s.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
