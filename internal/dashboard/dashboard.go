// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/voodoo-quality/internal/cache"
	"github.com/tomtom215/voodoo-quality/internal/charts"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Reload reasons sent with dashboard_reload events.
const (
	ReasonImport = "import"
	ReasonManual = "manual"
)

// StatsSource is the part of cache.StatsCache the dashboard reads through.
type StatsSource interface {
	Get(timeframe models.Timeframe) cache.Snapshot
	Refresh(ctx context.Context, timeframe models.Timeframe, force bool) cache.Snapshot
	Lookup(timeframe models.Timeframe, forced bool) cache.Snapshot
	InvalidateAll() int
}

// Notifier receives dashboard events. The websocket hub implements it.
type Notifier interface {
	BroadcastStatsRefreshed(timeframe models.Timeframe, forced bool, lastUpdated string)
	BroadcastDashboardReload(reason string)
}

// View is what the dashboard renders for one timeframe.
type View struct {
	Timeframe models.Timeframe         `json:"timeframe"`
	Stats     *models.DataQualityStats `json:"stats"`
	Loading   bool                     `json:"loading"`
	Error     *string                  `json:"error"`
	Status    models.CacheStatus       `json:"status"`
	Stale     bool                     `json:"stale"`
	FetchedAt *time.Time               `json:"fetched_at"`
	Charts    charts.Bundle            `json:"charts"`
}

// Dashboard tracks the selected timeframe and turns cache snapshots into views.
type Dashboard struct {
	source   StatsSource
	notifier Notifier
	logger   zerolog.Logger

	mu        sync.RWMutex
	timeframe models.Timeframe
}

// New creates a Dashboard showing initial. A nil notifier disables events.
func New(source StatsSource, notifier Notifier, initial models.Timeframe) *Dashboard {
	if !initial.Valid() {
		initial = models.DefaultTimeframe
	}
	return &Dashboard{
		source:    source,
		notifier:  notifier,
		logger:    logging.WithComponent("dashboard"),
		timeframe: initial,
	}
}

// Timeframe returns the selected timeframe.
func (d *Dashboard) Timeframe() models.Timeframe {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.timeframe
}

// SetTimeframe selects tf and returns its view, starting a fetch if needed.
func (d *Dashboard) SetTimeframe(tf models.Timeframe) (View, error) {
	if !tf.Valid() {
		return View{}, models.ErrInvalidTimeframe
	}
	d.mu.Lock()
	prev := d.timeframe
	d.timeframe = tf
	d.mu.Unlock()

	if prev != tf {
		d.logger.Info().Str("from", prev.String()).Str("to", tf.String()).Msg("Timeframe changed")
	}
	return d.StatsFor(tf), nil
}

// Stats returns the view of the selected timeframe.
func (d *Dashboard) Stats() View {
	return d.StatsFor(d.Timeframe())
}

// StatsFor returns the cached view of tf without blocking on the catalog.
func (d *Dashboard) StatsFor(tf models.Timeframe) View {
	return newView(d.source.Get(tf))
}

// ForceRefresh refetches the selected timeframe and waits for the result.
func (d *Dashboard) ForceRefresh(ctx context.Context, force bool) View {
	return d.RefreshTimeframe(ctx, d.Timeframe(), force)
}

// RefreshTimeframe refetches tf and waits for the result.
//
// With force set the view reflects the forced entry: its error if the
// regeneration failed, over the last good statistics of the normal entry
// when the forced entry never succeeded.
func (d *Dashboard) RefreshTimeframe(ctx context.Context, tf models.Timeframe, force bool) View {
	snap := d.source.Refresh(ctx, tf, force)
	if force && snap.Stats == nil {
		plain := d.source.Lookup(tf, false)
		snap.Stats = plain.Stats
		snap.FetchedAt = plain.FetchedAt
	}

	var ev *zerolog.Event
	if snap.Error != "" {
		ev = d.logger.Warn().Str("error", snap.Error)
	} else {
		ev = d.logger.Info()
	}
	ev.Str("timeframe", tf.String()).Bool("force", force).Bool("loading", snap.Loading).Msg("Stats refresh finished")

	if snap.Error == "" && !snap.Loading && snap.Stats != nil && d.notifier != nil {
		d.notifier.BroadcastStatsRefreshed(tf, force, snap.Stats.LastUpdated)
	}
	return newView(snap)
}

// Reload invalidates every cached entry, starts refetching the selected
// timeframe and tells connected browsers to reload. Old statistics stay
// visible until the refetch lands.
func (d *Dashboard) Reload(reason string) View {
	n := d.source.InvalidateAll()
	view := d.Stats()

	d.logger.Info().Str("reason", reason).Int("entries", n).Msg("Dashboard reload")
	if d.notifier != nil {
		d.notifier.BroadcastDashboardReload(reason)
	}
	return view
}

func newView(snap cache.Snapshot) View {
	v := View{
		Timeframe: snap.Timeframe,
		Stats:     snap.Stats,
		Loading:   snap.Loading,
		Status:    snap.Status,
		Stale:     snap.Stale,
		FetchedAt: snap.FetchedAt,
		Charts:    charts.PrepareAll(snap.Stats),
	}
	if snap.Error != "" {
		msg := snap.Error
		v.Error = &msg
	}
	return v
}
