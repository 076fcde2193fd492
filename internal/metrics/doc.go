// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package metrics holds the Prometheus collectors for the console.

All collectors are registered on the default registry through promauto and are
exposed by the API router at /metrics:

	curl http://localhost:3870/metrics

# Available Metrics

Catalog (upstream) Metrics:
  - catalog_request_duration_seconds: request latency (histogram), labels: endpoint
  - catalog_request_errors_total: failed requests, labels: endpoint, error_type
  - catalog_rate_limit_retries_total: retries after HTTP 429, labels: endpoint

Stats Cache Metrics:
  - stats_cache_hits_total / stats_cache_misses_total / stats_cache_stale_serves_total
    Labels: timeframe
  - stats_cache_fetches_total: labels timeframe, forced, result
  - stats_cache_fetch_duration_seconds: labels forced
  - stats_cache_coalesced_total: refreshes that joined an in-flight fetch
  - stats_cache_evictions_total, stats_cache_entries

Transfer Metrics:
  - house_export_rows_total, house_exports_total{result}
  - house_imports_total{result}, house_import_rows_total{status}

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

API and WebSocket Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_dropped_total, websocket_errors_total

# Usage

	start := time.Now()
	stats, err := client.FetchStats(ctx, models.TimeframeMonth, false)
	metrics.RecordUpstreamRequest("data-quality", time.Since(start), err)

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
