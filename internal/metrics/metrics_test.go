package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/posts/1", "/posts/2", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/posts/{id}", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/ok", "200")))
}

func TestCacheCounters(t *testing.T) {
	m := New()
	m.Hit("hierarchy")
	m.Hit("hierarchy")
	m.Miss("dashboard")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheHits.WithLabelValues("hierarchy")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMisses.WithLabelValues("dashboard")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Hit("x")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pressroom_cache_hits_total"))
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
