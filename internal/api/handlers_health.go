// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/metrics"
)

// Health reports liveness. An open breaker degrades the status without
// failing the probe: cached views are still served.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	resp := HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		Uptime:       uptime,
		CircuitState: "unknown",
	}
	if h.breaker != nil {
		resp.CircuitState = h.breaker.State()
		if resp.CircuitState == "open" {
			resp.Status = "degraded"
		}
	}
	if h.cache != nil {
		resp.CacheEntries = h.cache.Len()
		resp.CacheHitRate = h.cache.HitRate()
	}
	if h.wsHub != nil {
		resp.WSConnections = h.wsHub.GetClientCount()
	}
	if h.dashboard != nil {
		resp.Timeframe = string(h.dashboard.Timeframe())
	}

	WriteSuccess(w, r, resp)
}
