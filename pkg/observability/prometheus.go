package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHooks implements every hook interface on Prometheus metrics.
type PrometheusHooks struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	records       *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// PrometheusOption configures PrometheusHooks.
type PrometheusOption func(*PrometheusHooks)

// WithNamespace sets the metric namespace (default "trackviz").
func WithNamespace(ns string) PrometheusOption {
	return func(p *PrometheusHooks) {
		if ns != "" {
			p.namespace = ns
		}
	}
}

// WithRegistry registers the metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) PrometheusOption {
	return func(p *PrometheusHooks) {
		if reg != nil {
			p.registry = reg
		}
	}
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(b []float64) PrometheusOption {
	return func(p *PrometheusHooks) {
		if len(b) > 0 {
			p.buckets = b
		}
	}
}

// NewPrometheusHooks creates the metrics and registers them.
func NewPrometheusHooks(opts ...PrometheusOption) *PrometheusHooks {
	p := &PrometheusHooks{
		namespace: "trackviz",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(p.registry)
	p.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   p.buckets,
	}, []string{"stage", "outcome"})
	p.records = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Name:      "records_total",
		Help:      "Table rows seen by normalization, by result",
	}, []string{"result"})
	p.cacheEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Subsystem: "cache",
		Name:      "events_total",
		Help:      "Cache lookups and writes by key type",
	}, []string{"key_type", "event"})
	p.cacheBytes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Subsystem: "cache",
		Name:      "written_bytes_total",
		Help:      "Bytes written to the cache by key type",
	}, []string{"key_type"})
	p.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace,
		Subsystem: "source",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of remote source fetches",
		Buckets:   p.buckets,
	}, []string{"host", "code"})
	p.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Subsystem: "source",
		Name:      "fetch_errors_total",
		Help:      "Remote source fetches that failed before a response",
	}, []string{"host"})
	p.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests served by route and status code",
	}, []string{"route", "code"})
	p.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of served requests",
		Buckets:   p.buckets,
	}, []string{"route"})
	return p
}

// Install registers p as the pipeline, cache and HTTP hooks.
func (p *PrometheusHooks) Install() {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

// Registry returns the registry the metrics live on.
func (p *PrometheusHooks) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// ObserveRequest records one served request.
func (p *PrometheusHooks) ObserveRequest(route string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnLoadStart(context.Context, string) {}

func (p *PrometheusHooks) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("load", outcome(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnNormalize(_ context.Context, rows, kept, anomalies int, d time.Duration) {
	p.stageDuration.WithLabelValues("normalize", "ok").Observe(d.Seconds())
	p.records.WithLabelValues("kept").Add(float64(kept))
	p.records.WithLabelValues("dropped").Add(float64(max(0, rows-kept)))
	p.records.WithLabelValues("anomaly").Add(float64(anomalies))
}

func (p *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (p *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("render", outcome(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	p.fetchDuration.WithLabelValues(host, strconv.Itoa(code)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	p.fetchErrors.WithLabelValues(host).Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
