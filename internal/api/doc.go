// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package api serves the console's HTTP surface on a chi router.

# Routes

	GET  /api/v1/health                      liveness, breaker state, cache size
	GET  /api/v1/data-quality?timeframe=     cached dashboard view
	POST /api/v1/data-quality/refresh        refetch, force=1 regenerates upstream
	PUT  /api/v1/data-quality/timeframe      switch the current timeframe
	GET  /api/v1/houses/export               perfume_houses.csv download
	POST /api/v1/houses/import               forward an edited CSV to the catalog
	GET  /ws                                 dashboard events
	GET  /metrics                            Prometheus exposition

# Responses

JSON endpoints answer with one envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Errors set success=false and carry {code, message, details, request_id}.
The export answers raw text/csv instead.

# Middleware

Global: request IDs, RealIP, Recoverer, CORS (go-chi/cors). Under /api/v1:
Prometheus instrumentation labelled by route pattern, security headers and
per-IP limits (go-chi/httprate) with a stricter budget for imports.

# Imports

The CSRF token is taken from the X-CSRF-Token header, then the _csrf cookie
(name configurable), then the configured static token. Pre-flight failures
answer 400, a refusal reported by the catalog 422, other catalog failures 502
and an open circuit breaker 503.
*/
package api
