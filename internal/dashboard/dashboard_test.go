// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/voodoo-quality/internal/cache"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// stubFetcher answers every fetch with the configured result.
type stubFetcher struct {
	mu    sync.Mutex
	stats *models.DataQualityStats
	err   error
	calls []cache.Key
}

func (f *stubFetcher) FetchStats(_ context.Context, tf models.Timeframe, force bool) (*models.DataQualityStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cache.Key{Timeframe: tf, Forced: force})
	return f.stats, f.err
}

func (f *stubFetcher) set(stats *models.DataQualityStats, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats, f.err = stats, err
}

func (f *stubFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type event struct {
	kind   string
	tf     models.Timeframe
	forced bool
	detail string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) BroadcastStatsRefreshed(tf models.Timeframe, forced bool, lastUpdated string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{kind: "stats_refreshed", tf: tf, forced: forced, detail: lastUpdated})
}

func (n *recordingNotifier) BroadcastDashboardReload(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{kind: "dashboard_reload", detail: reason})
}

func (n *recordingNotifier) all() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

func stats(version string, missing ...models.BrandCount) *models.DataQualityStats {
	return &models.DataQualityStats{
		TotalMissing:   len(missing),
		MissingByBrand: models.BrandCounts(missing),
		LastUpdated:    version,
	}
}

func setup(t *testing.T) (*Dashboard, *cache.StatsCache, *stubFetcher, *recordingNotifier) {
	t.Helper()
	f := &stubFetcher{}
	c := cache.New(f, cache.Options{})
	t.Cleanup(c.Close)
	n := &recordingNotifier{}
	return New(c, n, models.TimeframeMonth), c, f, n
}

func TestNew_DefaultsInvalidTimeframe(t *testing.T) {
	d := New(cache.New(&stubFetcher{}, cache.Options{}), nil, "year")
	if d.Timeframe() != models.DefaultTimeframe {
		t.Errorf("timeframe = %s", d.Timeframe())
	}
}

func TestStats_FirstVisitLoadsInBackground(t *testing.T) {
	d, c, f, _ := setup(t)
	f.set(stats("v1", models.BrandCount{Name: "Dior", Count: 3}, models.BrandCount{Name: "Chanel", Count: 1}), nil)

	v := d.Stats()
	if v.Stats != nil || v.Error != nil {
		t.Fatalf("first view = %+v", v)
	}
	if len(v.Charts.Missing.Labels) != 0 || v.Charts.Breakdown == nil {
		t.Errorf("charts for nil stats should be empty, got %+v", v.Charts)
	}

	c.Wait()
	v = d.Stats()
	if v.Stats == nil || v.Stats.LastUpdated != "v1" || v.Loading {
		t.Fatalf("view after fetch = %+v", v)
	}
	if got := strings.Join(v.Charts.Missing.Labels, ","); got != "Dior,Chanel" {
		t.Errorf("labels = %s", got)
	}
	if v.Charts.Missing.Values[0] != 3 || v.Charts.Missing.Values[1] != 1 {
		t.Errorf("values = %v", v.Charts.Missing.Values)
	}
	if f.count() != 1 {
		t.Errorf("fetches = %d, want 1", f.count())
	}
}

func TestSetTimeframe(t *testing.T) {
	d, c, f, _ := setup(t)
	f.set(stats("w"), nil)

	if _, err := d.SetTimeframe("year"); !errors.Is(err, models.ErrInvalidTimeframe) {
		t.Errorf("err = %v, want ErrInvalidTimeframe", err)
	}
	if d.Timeframe() != models.TimeframeMonth {
		t.Errorf("invalid timeframe must not change selection, got %s", d.Timeframe())
	}

	v, err := d.SetTimeframe(models.TimeframeWeek)
	if err != nil {
		t.Fatal(err)
	}
	if v.Timeframe != models.TimeframeWeek || d.Timeframe() != models.TimeframeWeek {
		t.Errorf("view timeframe %s, selected %s", v.Timeframe, d.Timeframe())
	}
	c.Wait()
	if f.calls[0] != (cache.Key{Timeframe: models.TimeframeWeek}) {
		t.Errorf("fetched %v", f.calls[0])
	}
}

func TestForceRefresh_CrossWritesAndNotifies(t *testing.T) {
	d, _, f, n := setup(t)
	f.set(stats("regenerated"), nil)

	v := d.ForceRefresh(context.Background(), true)
	if v.Stats == nil || v.Stats.LastUpdated != "regenerated" || v.Error != nil {
		t.Fatalf("view = %+v", v)
	}

	// The normal entry was written by the forced fetch: no second round trip.
	plain := d.Stats()
	if plain.Stats == nil || plain.Stats.LastUpdated != "regenerated" || plain.Stale {
		t.Fatalf("plain view = %+v", plain)
	}
	if f.count() != 1 {
		t.Errorf("fetches = %d, want 1", f.count())
	}

	events := n.all()
	if len(events) != 1 || events[0] != (event{kind: "stats_refreshed", tf: models.TimeframeMonth, forced: true, detail: "regenerated"}) {
		t.Errorf("events = %+v", events)
	}
}

func TestForceRefresh_ClearsPreviousError(t *testing.T) {
	d, c, f, _ := setup(t)
	f.set(nil, errors.New("boom"))

	d.Stats()
	c.Wait()
	v := d.Stats()
	if v.Error == nil || *v.Error != "Failed to fetch data quality stats: boom" {
		t.Fatalf("error = %v", v.Error)
	}

	f.set(stats("fresh"), nil)
	v = d.ForceRefresh(context.Background(), true)
	if v.Error != nil || v.Stats == nil || v.Stats.LastUpdated != "fresh" {
		t.Fatalf("forced view = %+v", v)
	}
	if v = d.Stats(); v.Error != nil || v.Stats.LastUpdated != "fresh" {
		t.Errorf("plain view after forced success = %+v", v)
	}
}

func TestForceRefresh_FailureKeepsLastGoodStats(t *testing.T) {
	d, _, f, n := setup(t)
	f.set(stats("good"), nil)
	d.ForceRefresh(context.Background(), false)

	f.set(nil, errors.New("catalog down"))
	v := d.ForceRefresh(context.Background(), true)
	if v.Error == nil || !strings.Contains(*v.Error, "catalog down") {
		t.Fatalf("error = %v", v.Error)
	}
	if v.Stats == nil || v.Stats.LastUpdated != "good" {
		t.Errorf("stats = %+v, want last good payload", v.Stats)
	}
	if plain := d.Stats(); plain.Error != nil {
		t.Errorf("normal entry must not record the forced failure: %v", *plain.Error)
	}

	events := n.all()
	if len(events) != 1 || events[0].forced {
		t.Errorf("only the unforced success should notify, got %+v", events)
	}
}

func TestForceRefresh_UnforcedRefetchesFreshEntry(t *testing.T) {
	d, _, f, _ := setup(t)
	f.set(stats("a"), nil)

	d.ForceRefresh(context.Background(), false)
	f.set(stats("b"), nil)
	v := d.ForceRefresh(context.Background(), false)

	if v.Stats.LastUpdated != "b" || f.count() != 2 {
		t.Errorf("stats %s after %d fetches", v.Stats.LastUpdated, f.count())
	}
}

func TestRefreshTimeframe_DoesNotChangeSelection(t *testing.T) {
	d, _, f, _ := setup(t)
	f.set(stats("all"), nil)

	v := d.RefreshTimeframe(context.Background(), models.TimeframeAll, false)
	if v.Timeframe != models.TimeframeAll || d.Timeframe() != models.TimeframeMonth {
		t.Errorf("view %s, selected %s", v.Timeframe, d.Timeframe())
	}
}

func TestReload(t *testing.T) {
	d, c, f, n := setup(t)
	f.set(stats("before"), nil)
	d.ForceRefresh(context.Background(), false)

	f.set(stats("after"), nil)
	v := d.Reload(ReasonImport)
	if v.Stats == nil || v.Stats.LastUpdated != "before" {
		t.Errorf("reload should keep serving old stats, got %+v", v.Stats)
	}

	c.Wait()
	if got := d.Stats(); got.Stats.LastUpdated != "after" {
		t.Errorf("stats after reload = %s", got.Stats.LastUpdated)
	}
	if f.count() != 2 {
		t.Errorf("fetches = %d, want 2", f.count())
	}

	events := n.all()
	last := events[len(events)-1]
	if last.kind != "dashboard_reload" || last.detail != ReasonImport {
		t.Errorf("last event = %+v", last)
	}
}

func TestView_JSON(t *testing.T) {
	d, _, f, _ := setup(t)
	f.set(stats("v"), nil)
	v := d.ForceRefresh(context.Background(), false)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"timeframe":"month"`, `"error":null`, `"status":"idle"`, `"charts":{`, `"lastUpdated":"v"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}
}

func TestNilNotifier(t *testing.T) {
	f := &stubFetcher{stats: stats("x")}
	c := cache.New(f, cache.Options{})
	defer c.Close()
	d := New(c, nil, models.TimeframeWeek)

	d.ForceRefresh(context.Background(), true)
	d.Reload(ReasonManual)
}
