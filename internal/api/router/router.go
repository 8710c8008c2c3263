package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/scam-honeypot/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/scam-honeypot/internal/http/middleware"
	"github.com/wolfman30/scam-honeypot/internal/observability/metrics"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	HoneypotHandler *handlers.HoneypotHandler
	SessionHandler  *handlers.SessionHandler
	APISecretKey    string
	MetricsHandler  http.Handler

	// Optional rate limiting for the analyze routes
	RateLimiter httpmiddleware.Limiter
	Metrics     *metrics.HoneypotMetrics
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Shared-secret protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.APIKey(cfg.APISecretKey))

		if cfg.HoneypotHandler != nil {
			protected.Group(func(analyze chi.Router) {
				if cfg.RateLimiter != nil {
					analyze.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger, cfg.Metrics))
				}
				analyze.Post("/analyze", cfg.HoneypotHandler.Analyze)
				analyze.Post("/api/honeypot", cfg.HoneypotHandler.Analyze)
			})
		}
		if cfg.SessionHandler != nil {
			protected.Get("/sessions/{sessionID}", cfg.SessionHandler.GetSession)
		}
	})

	return r
}
