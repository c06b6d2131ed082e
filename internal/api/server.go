// SPDX-License-Identifier: MIT

// Package api is the HTTP surface of the bridge daemon: the editor
// endpoints (parametrization, views, model downloads), the analysis job
// API and the worker protocol.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/viktor-platform/scia-bridge/internal/artifacts"
	"github.com/viktor-platform/scia-bridge/internal/cache"
	"github.com/viktor-platform/scia-bridge/internal/config"
	"github.com/viktor-platform/scia-bridge/internal/jobs"
	"github.com/viktor-platform/scia-bridge/internal/metrics"
)

// Server wires the handlers to their dependencies.
type Server struct {
	cfg       *config.Holder
	manager   *jobs.Manager
	artifacts *artifacts.Store
	cache     cache.Cache
	dataDir   string
}

// Options carries the server dependencies.
type Options struct {
	Config    *config.Holder
	Manager   *jobs.Manager
	Artifacts *artifacts.Store
	Cache     cache.Cache
	DataDir   string
}

// New constructs the server. A nil cache disables response caching.
func New(opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.Disabled{}
	}
	return &Server{
		cfg:       opts.Config,
		manager:   opts.Manager,
		artifacts: opts.Artifacts,
		cache:     c,
		dataDir:   opts.DataDir,
	}
}

// Router builds the chi router with the canonical middleware stack:
// recoverer outermost, then request ID, metrics, tracing, access
// logging, and rate limiting on the mutating API routes.
func (s *Server) Router() *chi.Mux {
	cfg := s.cfg.Current()

	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(metrics.HTTPMiddleware)
	if cfg.TracingEnabled {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "scia-bridge.api")
		})
	}
	r.Use(accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.apiAuth)
			if cfg.RateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
			}

			r.Get("/parametrization", s.handleParametrization)
			r.Post("/bridge/validate", s.handleValidate)
			r.Post("/bridge/views/layout", s.handleLayoutView)
			r.Post("/bridge/views/foundations", s.handleFoundationsView)
			r.Post("/bridge/model", s.handleModelSummary)
			r.Post("/bridge/model/xml", s.handleModelXML)
			r.Post("/bridge/model/def", s.handleModelDef)
			r.Get("/bridge/model/esa", s.handleModelEsa)
			r.Post("/bridge/model/workbook", s.handleModelWorkbook)

			r.Post("/analyses", s.handleSubmit)
			r.Get("/analyses", s.handleListJobs)
			r.Get("/analyses/{id}", s.handleGetJob)
			r.Delete("/analyses/{id}", s.handleCancelJob)
			r.Get("/analyses/{id}/report", s.handleReport)
			r.Get("/analyses/{id}/artifacts", s.handleListArtifacts)
			r.Get("/analyses/{id}/artifacts/{name}", s.handleDownloadArtifact)
		})

		r.Route("/worker", func(r chi.Router) {
			r.Use(s.workerAuth)
			r.Get("/template", s.handleModelEsa)
			r.Post("/jobs/next", s.handleWorkerNext)
			r.Post("/jobs/{id}/artifacts/{name}", s.handleWorkerUpload)
			r.Post("/jobs/{id}/complete", s.handleWorkerComplete)
			r.Post("/jobs/{id}/fail", s.handleWorkerFail)
		})
	})

	return r
}
