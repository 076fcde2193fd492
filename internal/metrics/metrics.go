// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream (catalog) Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of requests to the catalog application in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_request_errors_total",
			Help: "Total number of failed requests to the catalog application",
		},
		[]string{"endpoint", "error_type"}, // error_type: "http_4xx", "http_5xx", "rate_limited", "circuit_open", "transport", "decode"
	)

	UpstreamRateLimitRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 from the catalog application",
		},
		[]string{"endpoint"},
	)

	// Stats Cache Metrics
	StatsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_hits_total",
			Help: "Total number of stats cache reads answered with a fresh entry",
		},
		[]string{"timeframe"},
	)

	StatsCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_misses_total",
			Help: "Total number of stats cache reads with no cached payload",
		},
		[]string{"timeframe"},
	)

	StatsCacheStaleServes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_stale_serves_total",
			Help: "Total number of stale payloads served while revalidating",
		},
		[]string{"timeframe"},
	)

	StatsCacheFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_fetches_total",
			Help: "Total number of upstream fetches started by the stats cache",
		},
		[]string{"timeframe", "forced", "result"}, // result: "success", "failure"
	)

	StatsCacheFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stats_cache_fetch_duration_seconds",
			Help:    "Duration of stats cache fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"forced"},
	)

	StatsCacheCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_cache_coalesced_total",
			Help: "Total number of refresh calls that joined a fetch already in flight",
		},
	)

	StatsCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_cache_evictions_total",
			Help: "Total number of entries evicted past the GC horizon",
		},
	)

	StatsCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stats_cache_entries",
			Help: "Current number of stats cache entries",
		},
	)

	// CSV Transfer Metrics
	ExportRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "house_export_rows_total",
			Help: "Total number of house rows encoded for export",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "house_exports_total",
			Help: "Total number of export operations",
		},
		[]string{"result"}, // "success", "empty", "failure"
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "house_imports_total",
			Help: "Total number of import operations",
		},
		[]string{"result"}, // "success", "rejected", "server_error", "failure"
	)

	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "house_import_rows_total",
			Help: "Total number of import result rows by status",
		},
		[]string{"status"}, // "created", "updated", "error"
	)

	// Scheduler Metrics
	ScheduledRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_refreshes_total",
			Help: "Total number of scheduled forced refreshes",
		},
		[]string{"timeframe", "result"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped for slow clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// HTTPStatusError is implemented by errors that carry an upstream HTTP status.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// RecordUpstreamRequest records one request to the catalog application.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		UpstreamRequestErrors.WithLabelValues(endpoint, classifyUpstreamError(err)).Inc()
	}
}

func classifyUpstreamError(err error) string {
	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		switch code := statusErr.HTTPStatus(); {
		case code == 429:
			return "rate_limited"
		case code >= 500:
			return "http_5xx"
		default:
			return "http_4xx"
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker"):
		return "circuit_open"
	case strings.Contains(msg, "rate limit"):
		return "rate_limited"
	case strings.Contains(msg, "decode"):
		return "decode"
	default:
		return "transport"
	}
}

// RecordStatsFetch records a completed stats cache fetch.
func RecordStatsFetch(timeframe string, forced bool, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	f := strconv.FormatBool(forced)
	StatsCacheFetches.WithLabelValues(timeframe, f, result).Inc()
	StatsCacheFetchDuration.WithLabelValues(f).Observe(duration.Seconds())
}

// RecordImportResults tallies per-row import outcomes.
func RecordImportResults(created, updated, failed int) {
	ImportRows.WithLabelValues("created").Add(float64(created))
	ImportRows.WithLabelValues("updated").Add(float64(updated))
	ImportRows.WithLabelValues("error").Add(float64(failed))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
