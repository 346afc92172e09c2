package observability

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAndCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.CacheHitsTotal.Inc()
	m.CacheMissesTotal.Inc()
	m.CacheMissesTotal.Inc()
	m.RouteMessagesTotal.Inc()
	m.AuthResolutionsTotal.WithLabelValues("authenticated").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RouteMessagesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthResolutionsTotal.WithLabelValues("authenticated")))
}

func TestHandler_Exposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.SessionsIssuedTotal.Inc()

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "depot_sessions_issued_total 1"))
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	// Two registries must not conflict (tests rely on this)
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())
	a.CacheHitsTotal.Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.CacheHitsTotal))
}
