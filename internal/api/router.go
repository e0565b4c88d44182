package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/snoutly/trackwatch/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	limiter := middleware.NewIPRateLimiter(s.config.RateLimitPerMinute)

	// Global middleware
	r.Use(middleware.RequestLogger(s.log))
	r.Use(middleware.Recoverer(s.log))
	r.Use(middleware.PrometheusMiddleware)

	r.Get("/healthz", s.handleHealth)

	// All API routes require the invoker secret.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(limiter))
		r.Use(middleware.BearerSecret(s.config.CheckSecret))

		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/positions", s.handleIngestPosition)
		r.Get("/alerts", s.handleListAlerts)
		r.Post("/alerts/{id}/read", s.handleMarkAlertRead)
	})

	return r
}
