// Package server serves charts over HTTP.
//
// Routes:
//
//	GET  /               chart page for the configured source
//	GET  /chart.{format} the same chart as svg, png or json
//	POST /api/charts     chart an uploaded CSV body, returns {"id": ...}
//	GET  /charts/{id}    a stored upload chart
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus metrics, when enabled
//
// A source that cannot be loaded never yields a partial chart: "/" answers
// with the error panel document instead.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/observability"
	"github.com/matzehuels/trackviz/pkg/pipeline"
)

const (
	// DefaultMaxUploadBytes caps POST /api/charts bodies.
	DefaultMaxUploadBytes = 10 << 20

	shutdownTimeout = 10 * time.Second
)

// Server renders charts for HTTP clients.
type Server struct {
	runner   *pipeline.Runner
	base     pipeline.Options
	metrics  *observability.PrometheusHooks
	logger   *log.Logger
	chartTTL time.Duration
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves /metrics from p and records request metrics into it.
func WithMetrics(p *observability.PrometheusHooks) Option {
	return func(s *Server) { s.metrics = p }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChartTTL sets how long uploaded charts are kept.
func WithChartTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.chartTTL = d
		}
	}
}

// WithMaxUploadBytes caps upload bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New returns a server rendering with runner. base holds the chart options
// every request starts from, including the source charted at "/".
func New(runner *pipeline.Runner, base pipeline.Options, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		base:     base,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		chartTTL: cache.TTLChart,
		maxBody:  DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/chart.{format}", s.handleArtifact)
	r.Post("/api/charts", s.handleUpload)
	r.Get("/charts/{id}", s.handleStored)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
