package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveResolution("exact")
	m.ObserveResolution("exact")
	m.ObserveResolution("fallback")
	m.ObserveInsights(true)
	m.ObserveInsights(false)
	m.ObserveInsights(false)
	m.SetAliases(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.insights.WithLabelValues("miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.aliases))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/api/v1/notes/resolve", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `parfum_http_requests_total{method="POST",path="/api/v1/notes/resolve",status="200"} 1`))
	assert.Contains(t, body, "parfum_http_request_duration_seconds_bucket")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("exact")
		m.ObserveInsights(true)
		m.ObserveRequest(http.MethodGet, "/", 200, time.Second)
		m.SetAliases(1)
		m.SetCatalogEntries(1)
	})
}
