package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and handlers.
// It sets up download routes, health check, and Prometheus metrics endpoint.
func NewRouter(jobService JobServiceI, recentLimit int, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	jobHandler := NewJobHandler(jobService, recentLimit, logger)

	r.Route("/download", func(r chi.Router) {
		r.Post("/", jobHandler.SubmitDownload)
		r.Get("/{jobID}", jobHandler.GetDownload)
	})

	r.Get("/status", jobHandler.GetStatus)
	r.Get("/health", jobHandler.GetHealth)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
