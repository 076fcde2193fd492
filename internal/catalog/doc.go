// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package catalog is the HTTP client for the perfume catalog application.

Three endpoints are used:

	GET  /api/data-quality?timeframe=week|month|all&force=0|1&_=<epoch ms>
	GET  /api/data-quality-houses
	POST /api/update-house-info   (Content-Type: text/csv, X-CSRF-Token)

# Resilience

Client applies an outbound token bucket (golang.org/x/time/rate) to every
request and retries HTTP 429 on the read endpoints with exponential backoff,
honoring Retry-After. The upload is never retried.

CircuitBreakerClient wraps any API with sony/gobreaker. It opens after a 60%
failure rate over at least 10 requests and probes again after 2 minutes.
Rejected calls return an error wrapping ErrCircuitOpen.

# Errors

	*StatusError  non-2xx on a read: "HTTP error! Status: 503"
	*HTTPError    non-2xx on upload: "HTTP 400: CSV parse error"

Both expose HTTPStatus for metrics classification.

# Usage

	client := catalog.NewCircuitBreakerClient(catalog.NewClient(&cfg.Upstream))
	stats, err := client.FetchStats(ctx, models.TimeframeMonth, false)
*/
package catalog
