package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/config"
	"github.com/mckenziekrogers-collab/deepseek-proxy/pkg/proxy/middleware"
)

// ChatCompletionPaths are the route aliases served by the chat handler. SDKs
// differ on whether they send the /v1 prefix or a trailing slash, so all four
// spellings are registered.
var ChatCompletionPaths = []string{
	"/v1/chat/completions",
	"/v1/chat/completions/",
	"/chat/completions",
	"/chat/completions/",
}

// Routes holds the handlers mounted by the server. Metrics is optional; when
// nil no scrape endpoint is registered.
type Routes struct {
	Chat        http.Handler
	Health      http.Handler
	Models      http.Handler
	NotFound    http.Handler
	Metrics     http.Handler
	MetricsPath string
}

// Server is the HTTP front of the proxy.
type Server struct {
	config *config.ServerConfig
	routes Routes

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server for the given routes.
func NewServer(cfg *config.ServerConfig, routes Routes) *Server {
	return &Server{
		config:       cfg,
		routes:       routes,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown. Shutdown is
// triggered by context cancellation, SIGINT/SIGTERM, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting proxy server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown drains in-flight requests and stops the server. Safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("proxy server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether Start is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the route mux wrapped in the middleware chain. Exposed so
// tests can drive the full stack without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, path := range ChatCompletionPaths {
		mux.Handle(path, s.routes.Chat)
	}
	mux.Handle("/health", s.routes.Health)
	mux.Handle("/v1/models", s.routes.Models)

	if s.routes.Metrics != nil {
		path := s.routes.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle(path, s.routes.Metrics)
	}

	if s.routes.NotFound != nil {
		mux.Handle("/", s.routes.NotFound)
	}

	var handler http.Handler = mux
	handler = middleware.BodyLimitMiddleware(s.config.MaxBodyBytes)(handler)
	handler = middleware.CORSMiddleware(corsConfig(&s.config.CORS))(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

func corsConfig(cfg *config.CORSConfig) *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        cfg.Enabled,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		MaxAge:         cfg.MaxAge,
	}
}
