// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package config loads and validates console configuration.

# Sources

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults
 2. YAML file from CONFIG_PATH, ./config.yaml or /etc/voodoo-quality/config.yaml
 3. A .env file in the working directory (via godotenv; never overrides real env vars)
 4. Environment variables

# Environment Variables

Upstream catalog:
  - CATALOG_URL: catalog base URL (required)
  - CATALOG_TIMEOUT: HTTP timeout (default: 30s)
  - CATALOG_CSRF_TOKEN: token for unattended imports (CLI)
  - CATALOG_CSRF_COOKIE: cookie name read from browser uploads (default: _csrf)
  - CATALOG_RATE_LIMIT_RPS / CATALOG_RATE_LIMIT_BURST (default: 10 / 5)
  - CATALOG_MAX_RETRIES / CATALOG_RETRY_BASE_DELAY (default: 5 / 1s)

Stats cache:
  - CACHE_STALE_AFTER (default: 30s)
  - CACHE_GC_AFTER (default: 5m)
  - CACHE_JANITOR_INTERVAL (default: 1m)
  - CACHE_FETCH_TIMEOUT (default: 30s)
  - DEFAULT_TIMEFRAME: week, month or all (default: month)

Scheduler:
  - SCHEDULER_ENABLED (default: false)
  - SCHEDULER_CRON: standard 5-field cron spec (default: "0 3 * * *")
  - SCHEDULER_TIMEFRAMES: comma-separated (default: week,month,all)

Server and security:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
