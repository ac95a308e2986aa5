// Package server exposes the promopress HTTP API: catalog CRUD, campaign
// placement updates, and brochure export, plus health and metrics
// endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promopress/promopress/pkg/catalog/store"
	"github.com/promopress/promopress/pkg/pipeline"
)

// Server wires the catalog store and the pipeline runner into an HTTP API.
type Server struct {
	store     store.Store
	runner    *pipeline.Runner
	logger    *log.Logger
	uploadDir string
	company   string
}

// Option configures a Server.
type Option func(*Server)

// WithUploadDir sets where uploaded logo files are written.
func WithUploadDir(dir string) Option {
	return func(s *Server) { s.uploadDir = dir }
}

// WithCompanyName sets the company name printed on brochures.
func WithCompanyName(name string) Option {
	return func(s *Server) { s.company = name }
}

// New creates a Server.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:     st,
		runner:    runner,
		logger:    logger,
		uploadDir: "uploads",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProduct)
				r.Put("/", s.handleUpdateProduct)
				r.Delete("/", s.handleDeleteProduct)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", s.handleCreateTemplate)
			r.Delete("/{id}", s.handleDeleteTemplate)
		})

		r.Route("/logos", func(r chi.Router) {
			r.Delete("/{id}", s.handleDeleteLogo)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/templates", s.handleListTemplates)
			r.Get("/logos", s.handleListLogos)
			r.Post("/logos", s.handleUploadLogo)
			r.Get("/logos/active", s.handleActiveLogo)
			r.Get("/campaigns", s.handleListCampaigns)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", s.handleCreateCampaign)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCampaign)
				r.Put("/", s.handleUpdateCampaign)
				r.Delete("/", s.handleDeleteCampaign)
				r.Post("/products", s.handleAddCampaignProduct)
				r.Put("/products/{productID}/placement", s.handleUpdatePlacement)
				r.Get("/export", s.handleExport)
				r.Get("/overview", s.handleOverview)
				r.Get("/pages/{page}/preview", s.handlePreview)
			})
		})
	})

	return r
}

// ListenAndServe runs the API until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("api listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
