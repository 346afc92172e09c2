// Package observability provides structured logging and Prometheus metrics for depot.
//
// # Overview
//
// Logging is structured JSON over the stdlib slog handler, wrapped in a small
// chainable Logger (WithField / WithFields / WithError). Metrics are plain
// prometheus counters registered against an injected registry so tests can use
// an isolated one.
//
// # Usage Example
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("account_id", 42).Info("session resolved")
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.CacheHitsTotal.Inc()
package observability
