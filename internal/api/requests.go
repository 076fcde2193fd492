// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"net/http"

	"github.com/tomtom215/voodoo-quality/internal/models"
	"github.com/tomtom215/voodoo-quality/internal/validation"
)

// DataQualityQuery is the query string of GET /data-quality.
type DataQualityQuery struct {
	Timeframe string `query:"timeframe" validate:"omitempty,oneof=week month all"`
}

// RefreshQuery is the query string of POST /data-quality/refresh. Force
// accepts the 0/1 wire form and true/false.
type RefreshQuery struct {
	Timeframe string `query:"timeframe" validate:"omitempty,oneof=week month all"`
	Force     string `query:"force" validate:"omitempty,oneof=0 1 true false"`
}

// Forced reports the requested force flag. A refresh without one is forced.
func (q RefreshQuery) Forced() bool {
	return q.Force == "" || q.Force == "1" || q.Force == "true"
}

// TimeframeRequest is the body of PUT /data-quality/timeframe.
type TimeframeRequest struct {
	Timeframe string `json:"timeframe" validate:"required,oneof=week month all"`
}

// ImportQuery names a raw text/csv upload.
type ImportQuery struct {
	Filename string `query:"filename" validate:"omitempty,max=255"`
}

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	ID      string                `json:"id"`
	Message string                `json:"message"`
	Updated int                   `json:"updated"`
	Created int                   `json:"created"`
	Failed  int                   `json:"failed"`
	Results []models.ImportResult `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	Uptime        float64 `json:"uptime_seconds"`
	CircuitState  string  `json:"circuit_breaker"`
	CacheEntries  int     `json:"cache_entries"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	WSConnections int     `json:"websocket_clients"`
	Timeframe     string  `json:"timeframe"`
}

// validateRequest validates req and answers 400 on failure.
func validateRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
	return false
}

// validateQuery validates req and returns the failure as an error.
func validateQuery(req any) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	return nil
}

// timeframeOrCurrent parses a validated timeframe. Empty means the
// dashboard's current selection, reported by ok=false.
func timeframeOrCurrent(s string) (tf models.Timeframe, ok bool) {
	if s == "" {
		return "", false
	}
	tf, err := models.ParseTimeframe(s)
	return tf, err == nil
}
