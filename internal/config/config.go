// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package config

import (
	"fmt"
	"time"
)

// Config holds all console configuration.
//
// Loading order (see LoadWithKoanf):
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/voodoo-quality/config.yaml)
//  3. .env file, loaded into the process environment
//  4. Environment variables
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Cache     CacheConfig     `koanf:"cache"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// UpstreamConfig describes the perfume catalog application the console talks to.
//
// Environment Variables:
//   - CATALOG_URL: base URL of the catalog (required)
//   - CATALOG_TIMEOUT: per-request HTTP timeout (default: 30s)
//   - CATALOG_CSRF_TOKEN: static CSRF token used by the scheduler and CLI imports
//   - CATALOG_CSRF_COOKIE: cookie name carrying the CSRF token (default: _csrf)
//   - CATALOG_RATE_LIMIT_RPS, CATALOG_RATE_LIMIT_BURST: outbound request budget
//   - CATALOG_MAX_RETRIES, CATALOG_RETRY_BASE_DELAY: HTTP 429 backoff
type UpstreamConfig struct {
	BaseURL        string        `koanf:"base_url"`
	Timeout        time.Duration `koanf:"timeout"`
	CSRFToken      string        `koanf:"csrf_token"`
	CSRFCookie     string        `koanf:"csrf_cookie"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// CacheConfig tunes the statistics cache.
//
// StaleAfter is the stale-while-revalidate window. Entries older than GCAfter
// are evicted by the janitor, which runs every JanitorInterval.
type CacheConfig struct {
	StaleAfter       time.Duration `koanf:"stale_after"`
	GCAfter          time.Duration `koanf:"gc_after"`
	JanitorInterval  time.Duration `koanf:"janitor_interval"`
	FetchTimeout     time.Duration `koanf:"fetch_timeout"`
	DefaultTimeframe string        `koanf:"default_timeframe"`
}

// SchedulerConfig controls the nightly forced regeneration of statistics.
type SchedulerConfig struct {
	Enabled    bool     `koanf:"enabled"`
	Cron       string   `koanf:"cron"`
	Timeframes []string `koanf:"timeframes"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SecurityConfig holds browser-facing protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all layers and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the console runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
