// Package prom implements the observability hooks with Prometheus
// collectors registered on a private registry.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/observability"
)

const namespace = "sankeyflow"

// Registry holds every collector and implements the layout, cache and HTTP
// hook interfaces.
type Registry struct {
	registry *prometheus.Registry

	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  prometheus.Histogram
	LayoutNodes     prometheus.Histogram
	CheckViolations prometheus.Counter

	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all collectors registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initLayoutMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initLayoutMetrics() {
	r.LayoutsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Total number of layout computations by result code",
		},
		[]string{"code"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout computation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Number of nodes per layout",
			Buckets:   []float64{5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	r.CheckViolations = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_violations_total",
			Help:      "Total number of layout invariant violations found",
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequests = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result",
		},
		[]string{"key_type", "result"},
	)

	r.CacheBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Install registers r as the global layout, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetLayoutHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// =============================================================================
// Hook implementations
// =============================================================================

// OnLayoutStart implements observability.LayoutHooks.
func (r *Registry) OnLayoutStart(_ context.Context, nodes, _ int) {
	r.LayoutNodes.Observe(float64(nodes))
}

// OnLayoutComplete implements observability.LayoutHooks.
func (r *Registry) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	code := "OK"
	if err != nil {
		code = string(errors.GetCode(err))
		if code == "" {
			code = string(errors.ErrCodeInternal)
		}
	}
	r.LayoutsTotal.WithLabelValues(code).Inc()
	r.LayoutDuration.Observe(d.Seconds())
}

// OnCheckComplete implements observability.LayoutHooks.
func (r *Registry) OnCheckComplete(_ context.Context, violations int) {
	r.CheckViolations.Add(float64(violations))
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.LayoutHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)
