// Package web provides the HTTP server, pages and JSON API of the
// personal-trainer dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/trainer/internal/config"
	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/web/middleware"
)

// Resetter restores the backend's demo data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Deps are the collaborators the server needs. Audit and Resetter may be
// nil; Registry defaults to a fresh registry.
type Deps struct {
	Customers core.Resource[core.Customer]
	Trainings core.Resource[core.Training]
	Audit     core.AuditStore
	Resetter  Resetter
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg    *config.Config
	deps   Deps
	log    *slog.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer wires middleware and routes.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Logger,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	metrics := middleware.NewHTTPMetrics(s.deps.Registry)

	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(metrics.Handler)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(requestMetadata)

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.RateLimit("global", s.cfg.Rate.RequestsPerMinute))
		s.router.Use(middleware.MutationsOnly(middleware.RateLimit("mutations", s.cfg.Rate.MutationLimit)))
	}
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/customers", http.StatusFound)
	})

	// HTML pages post forms and carry a CSRF token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(s.cfg.Security))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", s.handleCustomers)
			r.Get("/new", s.handleCustomerNew)
			r.Post("/", s.handleCustomerCreate)
			r.Get("/export.csv", s.handleCustomerExport)
			r.Get("/{id}/edit", s.handleCustomerEdit)
			r.Post("/{id}", s.handleCustomerUpdate)
			r.Get("/{id}/delete", s.handleCustomerDeleteConfirm)
			r.Post("/{id}/delete", s.handleCustomerDelete)
		})

		r.Route("/trainings", func(r chi.Router) {
			r.Get("/", s.handleTrainings)
			r.Get("/new", s.handleTrainingNew)
			r.Post("/", s.handleTrainingCreate)
			r.Get("/export.csv", s.handleTrainingExport)
			r.Get("/{id}/edit", s.handleTrainingEdit)
			r.Post("/{id}", s.handleTrainingUpdate)
			r.Get("/{id}/delete", s.handleTrainingDeleteConfirm)
			r.Post("/{id}/delete", s.handleTrainingDelete)
		})

		r.Get("/calendar", s.handleCalendar)
		r.Get("/stats", s.handleStats)
		r.Get("/audit-log", s.handleAuditLog)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/customers", s.handleAPICustomers)
		r.Post("/customers", s.handleAPICustomerCreate)
		r.Put("/customers/{id}", s.handleAPICustomerUpdate)
		r.Delete("/customers/{id}", s.handleAPICustomerDelete)

		r.Get("/trainings", s.handleAPITrainings)
		r.Post("/trainings", s.handleAPITrainingCreate)
		r.Put("/trainings/{id}", s.handleAPITrainingUpdate)
		r.Delete("/trainings/{id}", s.handleAPITrainingDelete)

		r.Get("/calendar", s.handleAPICalendar)
		r.Get("/stats", s.handleAPIStats)
		r.Get("/audit-log", s.handleAPIAuditLog)
		r.Post("/reset", s.handleAPIReset)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}
	s.log.Info("starting server", "addr", sc.Addr(), "backend", s.cfg.Backend.BaseURL)
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders sets the hardening headers on every response. The CSP
// allows the inline stylesheet the layout ships.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with status. Encoding errors are logged since the
// header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
