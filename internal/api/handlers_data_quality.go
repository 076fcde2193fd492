// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// maxJSONBody bounds small JSON request bodies.
const maxJSONBody = 4 << 10

// DataQuality serves the cached view for a timeframe, or for the current
// selection when none is given. It never waits for the catalog: a cold entry
// answers with loading=true and is fetched in the background.
func (h *Handler) DataQuality(w http.ResponseWriter, r *http.Request) {
	q := DataQualityQuery{Timeframe: r.URL.Query().Get("timeframe")}
	if !validateRequest(w, r, &q) {
		return
	}

	if tf, ok := timeframeOrCurrent(q.Timeframe); ok {
		WriteSuccess(w, r, h.dashboard.StatsFor(tf))
		return
	}
	WriteSuccess(w, r, h.dashboard.Stats())
}

// RefreshDataQuality re-fetches statistics and waits for the result. force=1
// asks the catalog to regenerate them and updates both cache entries.
func (h *Handler) RefreshDataQuality(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := RefreshQuery{Timeframe: query.Get("timeframe"), Force: query.Get("force")}
	if !validateRequest(w, r, &q) {
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("timeframe", q.Timeframe).
		Bool("force", q.Forced()).
		Msg("Data quality refresh requested")

	if tf, ok := timeframeOrCurrent(q.Timeframe); ok {
		WriteSuccess(w, r, h.dashboard.RefreshTimeframe(r.Context(), tf, q.Forced()))
		return
	}
	WriteSuccess(w, r, h.dashboard.ForceRefresh(r.Context(), q.Forced()))
}

// SetTimeframe switches the dashboard's current timeframe and returns the view
// for it.
func (h *Handler) SetTimeframe(w http.ResponseWriter, r *http.Request) {
	var req TimeframeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		NewResponseWriter(w, r).BadRequest("Invalid request body")
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	tf, err := models.ParseTimeframe(req.Timeframe)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	view, err := h.dashboard.SetTimeframe(tf)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	WriteSuccess(w, r, view)
}
