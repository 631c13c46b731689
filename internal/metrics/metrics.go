// Package metrics exposes Prometheus collectors for the proxy.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	articleCacheTotal          *prometheus.CounterVec
	articleFetchTotal          *prometheus.CounterVec
	articleFetchSeconds        prometheus.Histogram
	articleCacheEntries        prometheus.Gauge
	searchRequestsTotal        *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		articleCacheTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frogfind_article_cache_total",
				Help: "Article cache lookups, labeled by result (hit, miss, shared).",
			},
			[]string{"result"},
		)

		articleFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frogfind_article_fetch_total",
				Help: "Upstream article fetches, labeled by status.",
			},
			[]string{"status"},
		)

		articleFetchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "frogfind_article_fetch_seconds",
				Help:    "Time spent fetching, extracting and rendering an article.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		articleCacheEntries = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "frogfind_article_cache_entries",
				Help: "Number of articles currently held in the cache.",
			},
		)

		searchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frogfind_search_requests_total",
				Help: "Search backend requests, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frogfind_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method, route and code.",
			},
			[]string{"method", "route", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frogfind_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCache records an article cache lookup.
func ObserveCache(result string) {
	Init()
	articleCacheTotal.WithLabelValues(result).Inc()
}

// ObserveCacheSize records the number of cached articles.
func ObserveCacheSize(entries int) {
	Init()
	articleCacheEntries.Set(float64(entries))
}

// ObserveFetch records an upstream article fetch by outcome. Hosts are
// client-chosen and never become labels.
func ObserveFetch(status string, d time.Duration) {
	Init()
	articleFetchTotal.WithLabelValues(status).Inc()
	articleFetchSeconds.Observe(d.Seconds())
}

// ObserveSearch records a search backend request.
func ObserveSearch(status string) {
	Init()
	searchRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records a served request.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		ObserveHTTPRequest(r.Method, route, ww.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
