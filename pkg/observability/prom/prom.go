// Package prom implements the observability hooks on Prometheus metrics.
//
// The serve command registers these hooks at startup and exposes the
// default registry on /metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/promopress/promopress/pkg/observability"
)

// Hooks aggregates the Prometheus implementations of all hook interfaces.
type Hooks struct {
	fetchDuration  *prometheus.HistogramVec
	layoutDuration prometheus.Histogram
	renderDuration prometheus.Histogram
	exportDuration *prometheus.HistogramVec
	exportSize     *prometheus.HistogramVec
	stageErrors    *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the hooks and registers their collectors with the default
// Prometheus registry.
func New() *Hooks {
	return &Hooks{
		fetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "promopress_fetch_duration_seconds",
			Help: "Catalog fetch duration by collection.",
		}, []string{"collection"}),
		layoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "promopress_layout_duration_seconds",
			Help: "Auto-layout pass duration.",
		}),
		renderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "promopress_render_duration_seconds",
			Help: "Single page render duration.",
		}),
		exportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "promopress_export_duration_seconds",
			Help: "Export duration by format.",
		}, []string{"format"}),
		exportSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "promopress_export_size_bytes",
			Help:    "Export artifact size by format.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		stageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "promopress_stage_errors_total",
			Help: "Pipeline stage errors.",
		}, []string{"stage"}),
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "promopress_cache_hits_total",
			Help: "Cache hits by key type.",
		}, []string{"type"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "promopress_cache_misses_total",
			Help: "Cache misses by key type.",
		}, []string{"type"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "promopress_http_client_requests_total",
			Help: "Outgoing HTTP requests by method and status.",
		}, []string{"method", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "promopress_http_client_duration_seconds",
			Help: "Outgoing HTTP request duration by method.",
		}, []string{"method"}),
	}
}

// Register installs the hooks into the global observability registry.
func (h *Hooks) Register() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// Pipeline hooks.

func (h *Hooks) OnFetchStart(ctx context.Context, collection string) {}

func (h *Hooks) OnFetchComplete(ctx context.Context, collection string, count int, d time.Duration, err error) {
	h.fetchDuration.WithLabelValues(collection).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("fetch").Inc()
	}
}

func (h *Hooks) OnLayoutStart(ctx context.Context, pageCount, productCount int) {}

func (h *Hooks) OnLayoutComplete(ctx context.Context, pageCount int, d time.Duration, err error) {
	h.layoutDuration.Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("layout").Inc()
	}
}

func (h *Hooks) OnRenderStart(ctx context.Context, page int) {}

func (h *Hooks) OnRenderComplete(ctx context.Context, page int, d time.Duration, err error) {
	h.renderDuration.Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("render").Inc()
	}
}

func (h *Hooks) OnExportStart(ctx context.Context, format string, pageCount int) {}

func (h *Hooks) OnExportComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	h.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("export").Inc()
		return
	}
	h.exportSize.WithLabelValues(format).Observe(float64(size))
}

// Cache hooks.

func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cacheHits.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cacheMisses.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {}

// HTTP hooks.

func (h *Hooks) OnRequest(ctx context.Context, method, host, path string) {}

func (h *Hooks) OnResponse(ctx context.Context, method, host, path string, statusCode int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, statusText(statusCode)).Inc()
	h.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (h *Hooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.httpRequests.WithLabelValues(method, "error").Inc()
}

func statusText(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
