// Package server provides the HTTP API for masking requests.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dativo-io/masker/internal/otel"
	"github.com/dativo-io/masker/internal/service"
)

const (
	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 16 << 20
)

// Server holds the dependencies of the HTTP API.
type Server struct {
	router         *chi.Mux
	svc            *service.Service
	metricsHandler http.Handler
	startTime      time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler replaces the Prometheus handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// NewServer builds a Server around svc.
func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		svc:            svc,
		metricsHandler: promhttp.Handler(),
		startTime:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler (chi router with all middleware and routes).
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestContext)
	r.Use(otel.MiddlewareWithStatus())

	r.Get("/health", s.handleHealth)
	r.Get("/v1/health", s.handleHealth)
	r.Handle("/metrics", s.metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/mask", s.handleMask)
		r.Post("/v1/mask/messages", s.handleMaskMessages)
		r.Patch("/v1/templates", s.handleUpdateTemplates)
		r.Get("/v1/tenants", s.handleTenants)
		r.Get("/v1/blacklist", s.handleBlacklist)
		r.Delete("/v1/blacklist", s.handleClearBlacklist)
	})
	return r
}
