package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Authentication metrics
	AuthResolutionsTotal *prometheus.CounterVec
	SessionsIssuedTotal  prometheus.Counter

	// Session cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Job service routing metrics
	RouteMessagesTotal prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AuthResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_auth_resolutions_total",
				Help: "Total number of bearer token resolutions by outcome",
			},
			[]string{"outcome"},
		),
		SessionsIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depot_sessions_issued_total",
				Help: "Total number of OAuth sessions issued",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depot_session_cache_hits_total",
				Help: "Total number of session cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depot_session_cache_misses_total",
				Help: "Total number of session cache misses",
			},
		),
		RouteMessagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depot_route_messages_total",
				Help: "Total number of messages routed to the job service",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}

	registry.MustRegister(
		m.AuthResolutionsTotal,
		m.SessionsIssuedTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RouteMessagesTotal,
		m.HTTPRequestsTotal,
	)

	return m
}

// Handler returns an HTTP handler exposing the registry in Prometheus format
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
