// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/housecsv"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Catalog endpoints
const (
	StatsPath        = "/api/data-quality"
	HousesPath       = "/api/data-quality-houses"
	UpdateHousesPath = "/api/update-house-info"
)

// CSRFHeader carries the CSRF token on uploads.
const CSRFHeader = "X-CSRF-Token"

// maxErrorBodySize limits the amount of response body read for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// maxImportResponseSize bounds the JSON reply to an upload, which lists one
// result per CSV row.
const maxImportResponseSize = 16 << 20

// readBodyForError reads at most 64KB of r for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// API is the set of catalog operations used by the cache, the transfer
// orchestrator and the CLI. Client and CircuitBreakerClient implement it.
type API interface {
	FetchStats(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error)
	FetchHouses(ctx context.Context) ([]models.HouseRecord, error)
	UpdateHouseInfo(ctx context.Context, csv []byte, csrfToken string) (*models.ImportResponse, error)
}

// Client talks to the catalog application over HTTP.
//
// Reads honor an outbound token bucket and retry HTTP 429 with exponential
// backoff (1s, 2s, 4s, ... or Retry-After). Uploads are sent exactly once.
//
// Safe for concurrent use.
type Client struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	csrfCookie     string
	maxRetries     int
	retryBaseDelay time.Duration
	now            func() time.Time
}

// NewClient creates a catalog client from cfg.
func NewClient(cfg *config.UpstreamConfig) *Client {
	limit := rate.Inf
	burst := cfg.RateLimitBurst
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	if burst < 1 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:        rate.NewLimiter(limit, burst),
		csrfCookie:     cfg.CSRFCookie,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		now:            time.Now,
	}
}

// FetchStats requests the statistics snapshot for timeframe. With force set
// the catalog regenerates the statistics instead of serving its own cache.
//
// Every request carries a cache-busting "_" parameter and no-cache headers.
// A non-2xx reply yields a *StatusError ("HTTP error! Status: <code>").
func (c *Client) FetchStats(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error) {
	start := time.Now()
	stats, err := c.fetchStats(ctx, timeframe, force)
	metrics.RecordUpstreamRequest("data-quality", time.Since(start), err)
	return stats, err
}

func (c *Client) fetchStats(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error) {
	params := url.Values{}
	params.Set("timeframe", timeframe.String())
	if force {
		params.Set("force", "1")
	} else {
		params.Set("force", "0")
	}
	params.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, StatsPath, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, "data-quality", reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		logging.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("body", logging.TruncateBody(string(body))).
			Msg("Catalog rejected stats request")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var stats models.DataQualityStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

// FetchHouses returns the full house table. The catalog may answer with a
// bare array or {"houses": [...]}.
func (c *Client) FetchHouses(ctx context.Context) ([]models.HouseRecord, error) {
	start := time.Now()
	houses, err := c.fetchHouses(ctx)
	metrics.RecordUpstreamRequest("houses", time.Since(start), err)
	return houses, err
}

func (c *Client) fetchHouses(ctx context.Context) ([]models.HouseRecord, error) {
	resp, err := c.doRequestWithRateLimit(ctx, "houses", c.baseURL+HousesPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var houses models.HousesResponse
	if err := json.NewDecoder(resp.Body).Decode(&houses); err != nil {
		return nil, fmt.Errorf("decode houses: %w", err)
	}
	return houses.Houses, nil
}

// UpdateHouseInfo uploads raw CSV text unmodified. The token is sent in the
// X-CSRF-Token header and, when a cookie name is configured, as that cookie.
//
// A 2xx reply is returned as decoded, including replies carrying an Error;
// interpreting them is up to the caller. A non-2xx reply yields *HTTPError
// whose Message is the catalog's "error" field.
func (c *Client) UpdateHouseInfo(ctx context.Context, csv []byte, csrfToken string) (*models.ImportResponse, error) {
	start := time.Now()
	result, err := c.updateHouseInfo(ctx, csv, csrfToken)
	metrics.RecordUpstreamRequest("update-house-info", time.Since(start), err)
	return result, err
}

func (c *Client) updateHouseInfo(ctx context.Context, csv []byte, csrfToken string) (*models.ImportResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UpdateHousesPath, bytes.NewReader(csv))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", housecsv.ContentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(CSRFHeader, csrfToken)
	if c.csrfCookie != "" {
		req.AddCookie(&http.Cookie{Name: c.csrfCookie, Value: csrfToken})
	}

	logging.Ctx(ctx).Debug().
		Int("bytes", len(csv)).
		Str("csrf", logging.SanitizeToken(csrfToken)).
		Msg("Uploading house CSV")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImportResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read import response: %w", err)
	}

	var result models.ImportResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			httpErr.Message = result.Error
		}
		return nil, httpErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode import response: %w", decodeErr)
	}
	return &result, nil
}

// doRequestWithRateLimit performs a GET with automatic rate limit handling.
// HTTP 429 replies are retried with exponential backoff; the Retry-After
// header (in seconds) overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		metrics.UpstreamRateLimitRetries.WithLabelValues(endpoint).Inc()
		logging.Ctx(ctx).Warn().
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Catalog rate limited request, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
