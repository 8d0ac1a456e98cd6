// Package metrics exposes Prometheus counters for HTTP traffic and the
// response cache.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressroom_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pressroom_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressroom_cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"key"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressroom_cache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"key"}),
		registry: reg,
	}
	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.CacheHits,
		m.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hit and Miss satisfy the cache's observer hook.
func (m *Metrics) Hit(key string) { m.CacheHits.WithLabelValues(key).Inc() }
func (m *Metrics) Miss(key string) { m.CacheMisses.WithLabelValues(key).Inc() }

// Middleware records one request. Routes are labelled by their chi
// pattern so ids in paths do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
