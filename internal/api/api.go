// Package api provides the HTTP invocation surface for the evaluation
// engine: the evaluate endpoint, position ingest, and alert readout.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/evaluator"
	"github.com/snoutly/trackwatch/internal/logging"
	"github.com/snoutly/trackwatch/internal/storage"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address string
	// CheckSecret authenticates the external scheduler that invokes
	// the evaluate endpoint. Requests without it are rejected.
	CheckSecret string
	// EvaluateTimeout bounds one evaluation pass triggered over HTTP.
	EvaluateTimeout time.Duration
	// RateLimitPerMinute is the per-IP request budget.
	RateLimitPerMinute int
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.EvaluateTimeout == 0 {
		c.EvaluateTimeout = 55 * time.Second
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 120
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CheckSecret == "" {
		return fmt.Errorf("check secret is required")
	}
	return nil
}

// Server is the HTTP API server.
type Server struct {
	config     *Config
	storage    storage.Storage
	dispatcher *evaluator.Dispatcher
	server     *http.Server
	log        zerolog.Logger
}

// New creates a new API server.
func New(cfg *Config, store storage.Storage, dispatcher *evaluator.Dispatcher, log zerolog.Logger) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api config: %w", err)
	}

	s := &Server{
		config:     cfg,
		storage:    store,
		dispatcher: dispatcher,
		log:        logging.Component(log, "api"),
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.EvaluateTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.config.Address).Msg("api server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down api server")
	return s.server.Shutdown(ctx)
}
