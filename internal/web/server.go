// Package web provides the JSON HTTP API for uploading, checking, cleaning
// and exporting CSV datasets.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/dataquality/internal/config"
	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/export"
	"github.com/JonMunkholm/dataquality/internal/metrics"
	"github.com/JonMunkholm/dataquality/internal/web/middleware"
)

// Server is the HTTP server for the data quality API.
type Server struct {
	cfg       *config.Config
	service   *core.Service
	publisher *export.Publisher
	metrics   *metrics.Metrics
	validate  *validator.Validate

	limiter       *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter

	router *chi.Mux
	server *http.Server
}

// NewServer wires routes and middleware. publisher and m may be nil.
func NewServer(cfg *config.Config, service *core.Service, publisher *export.Publisher, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		service:   service,
		publisher: publisher,
		metrics:   m,
		validate:  newValidator(),
		router:    chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		s.uploadLimiter = middleware.NewRateLimiter(cfg.Rate.UploadLimit, cfg.Rate.UploadLimit)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}
	s.router.Use(chimw.Recoverer)
	s.router.Use(s.securityHeaders)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	if s.limiter != nil {
		s.router.Use(s.limiter.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/checks", s.handleListChecks)

		r.Route("/datasets", func(r chi.Router) {
			r.Get("/", s.handleListDatasets)
			r.With(s.uploadLimit).Post("/", s.handleUpload)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDataset)
				r.Delete("/", s.handleDeleteDataset)

				r.Get("/report", s.handleReport)
				r.Get("/report/{check}", s.handleCheck)

				r.With(s.uploadLimit).Post("/clean", s.handleClean)
				r.Get("/export", s.handleExport)
				r.With(s.uploadLimit).Post("/publish", s.handlePublish)
			})
		})
	})
}

// uploadLimit applies the stricter limit for parse-heavy endpoints.
func (s *Server) uploadLimit(next http.Handler) http.Handler {
	if s.uploadLimiter == nil {
		return next
	}
	return s.uploadLimiter.Handler(next)
}

// StartBackground runs rate limiter cleanup until ctx is cancelled.
func (s *Server) StartBackground(ctx context.Context) {
	for _, rl := range []*middleware.RateLimiter{s.limiter, s.uploadLimiter} {
		if rl != nil {
			go rl.Run(ctx, s.cfg.Session.SweepInterval)
		}
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			// JSON API only; nothing should ever be loaded from a response.
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}
		next.ServeHTTP(w, r)
	})
}
