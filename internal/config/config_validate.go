// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateUpstream(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateScheduler(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateUpstream() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("CATALOG_URL is required")
	}
	if err := validateHTTPURL(c.Upstream.BaseURL, "CATALOG_URL"); err != nil {
		return fmt.Errorf("CATALOG_URL is invalid: %w", err)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}
	if c.Upstream.RateLimitRPS < 0 {
		return fmt.Errorf("CATALOG_RATE_LIMIT_RPS must not be negative")
	}
	if c.Upstream.RateLimitRPS > 0 && c.Upstream.RateLimitBurst < 1 {
		return fmt.Errorf("CATALOG_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.Upstream.MaxRetries < 0 || c.Upstream.MaxRetries > 10 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.StaleAfter <= 0 {
		return fmt.Errorf("CACHE_STALE_AFTER must be positive")
	}
	if c.Cache.GCAfter <= 0 {
		return fmt.Errorf("CACHE_GC_AFTER must be positive")
	}
	if c.Cache.GCAfter < c.Cache.StaleAfter {
		return fmt.Errorf("CACHE_GC_AFTER (%s) must not be shorter than CACHE_STALE_AFTER (%s)",
			c.Cache.GCAfter, c.Cache.StaleAfter)
	}
	if c.Cache.JanitorInterval < time.Second {
		return fmt.Errorf("CACHE_JANITOR_INTERVAL must be at least 1s")
	}
	if c.Cache.FetchTimeout <= 0 {
		return fmt.Errorf("CACHE_FETCH_TIMEOUT must be positive")
	}
	if _, err := models.ParseTimeframe(c.Cache.DefaultTimeframe); err != nil {
		return fmt.Errorf("DEFAULT_TIMEFRAME is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if !c.Scheduler.Enabled {
		return nil
	}
	if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
		return fmt.Errorf("SCHEDULER_CRON is invalid: %w", err)
	}
	if len(c.Scheduler.Timeframes) == 0 {
		return fmt.Errorf("SCHEDULER_TIMEFRAMES must list at least one timeframe")
	}
	for _, tf := range c.Scheduler.Timeframes {
		if _, err := models.ParseTimeframe(tf); err != nil {
			return fmt.Errorf("SCHEDULER_TIMEFRAMES is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitReqs   = 1
	maxRateLimitReqs   = 100000
	minRateLimitWindow = time.Second
	maxRateLimitWindow = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitReqs || c.Security.RateLimitReqs > maxRateLimitReqs {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitReqs, maxRateLimitReqs)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %s and %s", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports whether wildcard CORS is configured in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
