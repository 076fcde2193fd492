// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/voodoo-quality/config.yaml",
	"/etc/voodoo-quality/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is the optional dotenv file loaded before the environment layer.
var DotEnvPath = ".env"

func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:        "",
			Timeout:        30 * time.Second,
			CSRFToken:      "",
			CSRFCookie:     "_csrf",
			RateLimitRPS:   10,
			RateLimitBurst: 5,
			MaxRetries:     5,
			RetryBaseDelay: time.Second,
		},
		Cache: CacheConfig{
			StaleAfter:       30 * time.Second,
			GCAfter:          5 * time.Minute,
			JanitorInterval:  time.Minute,
			FetchTimeout:     30 * time.Second,
			DefaultTimeframe: "month",
		},
		Scheduler: SchedulerConfig{
			Enabled:    false,
			Cron:       "0 3 * * *",
			Timeframes: []string{"week", "month", "all"},
		},
		Server: ServerConfig{
			Port:        3870,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with precedence ENV > .env > file > defaults,
// then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// godotenv never overwrites variables that are already set, so real
	// environment values still win over the file.
	if _, err := os.Stat(DotEnvPath); err == nil {
		if err := godotenv.Load(DotEnvPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DotEnvPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFile returns the YAML file Load reads, or "" when there is none.
func ConfigFile() string {
	return findConfigFile()
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"scheduler.timeframes",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	// Upstream catalog
	"catalog_url":              "upstream.base_url",
	"catalog_timeout":          "upstream.timeout",
	"catalog_csrf_token":       "upstream.csrf_token",
	"catalog_csrf_cookie":      "upstream.csrf_cookie",
	"catalog_rate_limit_rps":   "upstream.rate_limit_rps",
	"catalog_rate_limit_burst": "upstream.rate_limit_burst",
	"catalog_max_retries":      "upstream.max_retries",
	"catalog_retry_base_delay": "upstream.retry_base_delay",

	// Stats cache
	"cache_stale_after":      "cache.stale_after",
	"cache_gc_after":         "cache.gc_after",
	"cache_janitor_interval": "cache.janitor_interval",
	"cache_fetch_timeout":    "cache.fetch_timeout",
	"default_timeframe":      "cache.default_timeframe",

	// Scheduler
	"scheduler_enabled":    "scheduler.enabled",
	"scheduler_cron":       "scheduler.cron",
	"scheduler_timeframes": "scheduler.timeframes",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to its config path.
// Unknown variables map to "" and are skipped.
//
// Examples:
//   - CATALOG_URL -> upstream.base_url
//   - CACHE_STALE_AFTER -> cache.stale_after
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for synchronizing access to reloaded config.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
