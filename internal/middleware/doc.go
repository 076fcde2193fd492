// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package middleware provides the console's own HTTP middleware. All of it uses
the func(http.Handler) http.Handler shape chi expects.

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labeled by chi route pattern
  - Compression: gzip for the CSV export

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
configured in package api.
*/
package middleware
