// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Defaults for Options fields left at zero.
const (
	DefaultStaleAfter   = 30 * time.Second
	DefaultGCAfter      = 5 * time.Minute
	DefaultFetchTimeout = 30 * time.Second
)

// ErrorPrefix starts every fetch error recorded on an entry.
const ErrorPrefix = "Failed to fetch data quality stats: "

var errEmptyResponse = errors.New("empty response from catalog")

// Fetcher loads a statistics snapshot from the catalog.
// Satisfied by *catalog.Client and *catalog.CircuitBreakerClient.
type Fetcher interface {
	FetchStats(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error)

// FetchStats implements Fetcher.
func (f FetcherFunc) FetchStats(ctx context.Context, timeframe models.Timeframe, force bool) (*models.DataQualityStats, error) {
	return f(ctx, timeframe, force)
}

// Key identifies a cache entry.
type Key struct {
	Timeframe models.Timeframe
	Forced    bool
}

// String returns "month" or "month:forced"; it is also the coalescing key.
func (k Key) String() string {
	if k.Forced {
		return string(k.Timeframe) + ":forced"
	}
	return string(k.Timeframe)
}

type entry struct {
	stats       *models.DataQualityStats
	fetchedAt   time.Time // last successful fetch
	attemptedAt time.Time // last completed fetch, successful or not
	usedAt      time.Time // last read or write, drives GC
	status      models.CacheStatus
	err         string
	inFlight    bool
	invalidated bool
	fetchGen    uint64 // generation the in-flight fetch started under
}

// Snapshot is a consistent copy of one cache entry.
type Snapshot struct {
	Timeframe models.Timeframe         `json:"timeframe"`
	Forced    bool                     `json:"forced"`
	Stats     *models.DataQualityStats `json:"stats"`
	Loading   bool                     `json:"loading"`
	Error     string                   `json:"error,omitempty"`
	Status    models.CacheStatus       `json:"status"`
	Stale     bool                     `json:"stale"`
	FetchedAt *time.Time               `json:"fetched_at,omitempty"`
}

// Stats tracks cache activity for the health endpoint.
type Stats struct {
	Hits        int64
	Misses      int64
	StaleServes int64
	Fetches     int64
	Coalesced   int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Options configures a StatsCache.
type Options struct {
	StaleAfter   time.Duration
	GCAfter      time.Duration
	FetchTimeout time.Duration

	// Clock defaults to the system clock.
	Clock Clock
}

// StatsCache is the timeframe-keyed statistics cache.
//
// Reads serve whatever is cached and revalidate in the background when the
// entry is missing, invalidated or older than StaleAfter. At most one fetch
// per Key is in flight; concurrent callers share its result. A forced fetch
// that succeeds is written into both (T, forced) and (T, not forced) under a
// single lock, so readers never see one without the other.
//
// Fetches run on a context owned by the cache, not the caller's, so a caller
// that goes away does not abort a fetch other callers are waiting for.
//
// Safe for concurrent use.
type StatsCache struct {
	fetcher Fetcher
	clock   Clock

	staleAfter   time.Duration
	gcAfter      time.Duration
	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[Key]*entry
	stats   Stats
	// generation is bumped by InvalidateAll. A fetch that started under an
	// older generation may carry data from before the invalidation.
	generation uint64

	group singleflight.Group
	wg    sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	logger zerolog.Logger
}

// New creates a StatsCache reading from fetcher.
func New(fetcher Fetcher, opts Options) *StatsCache {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.GCAfter <= 0 {
		opts.GCAfter = DefaultGCAfter
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &StatsCache{
		fetcher:      fetcher,
		clock:        opts.Clock,
		staleAfter:   opts.StaleAfter,
		gcAfter:      opts.GCAfter,
		fetchTimeout: opts.FetchTimeout,
		entries:      make(map[Key]*entry),
		baseCtx:      ctx,
		cancel:       cancel,
		logger:       logging.WithComponent("stats-cache"),
	}
}

// Get returns the cached value for (timeframe, not forced) and starts a
// background fetch when the entry is missing or stale and none is in flight.
// It never blocks on the network.
func (c *StatsCache) Get(timeframe models.Timeframe) Snapshot {
	key := Key{Timeframe: timeframe}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	e := c.entryLocked(key, now)
	e.usedAt = now

	switch {
	case e.stats == nil:
		c.stats.Misses++
		metrics.StatsCacheMisses.WithLabelValues(timeframe.String()).Inc()
	case c.staleLocked(e, now):
		c.stats.StaleServes++
		metrics.StatsCacheStaleServes.WithLabelValues(timeframe.String()).Inc()
	default:
		c.stats.Hits++
		metrics.StatsCacheHits.WithLabelValues(timeframe.String()).Inc()
	}

	if c.needsFetchLocked(e, now) {
		c.startFetchLocked(key, e)
	}

	return c.snapshotLocked(key, e, now)
}

// Refresh fetches key (timeframe, force) now and waits for the result, or
// joins the fetch already in flight for that key. The fresh entry is
// returned; failures are reported in Snapshot.Error, never as a Go error.
//
// If ctx ends first, Refresh returns the entry as it is while the fetch
// completes in the background.
func (c *StatsCache) Refresh(ctx context.Context, timeframe models.Timeframe, force bool) Snapshot {
	key := Key{Timeframe: timeframe, Forced: force}

	c.mu.Lock()
	e := c.entryLocked(key, c.clock.Now())
	if e.inFlight {
		c.stats.Coalesced++
		metrics.StatsCacheCoalesced.Inc()
	}
	ch := c.startFetchLocked(key, e)
	c.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return c.Lookup(timeframe, force)
}

// Lookup returns the entry for (timeframe, forced) without side effects.
func (c *StatsCache) Lookup(timeframe models.Timeframe, forced bool) Snapshot {
	key := Key{Timeframe: timeframe, Forced: forced}

	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Timeframe: timeframe, Forced: forced, Status: models.CacheStatusIdle, Stale: true}
	}
	return c.snapshotLocked(key, e, now)
}

// InvalidateAll marks every entry stale. Payloads are kept so readers keep
// seeing the old data until the refetch triggered by their next Get lands.
// Fetches already in flight do not satisfy the invalidation: when one lands,
// its entry stays stale and a new fetch starts.
// It returns the number of entries marked.
func (c *StatsCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for _, e := range c.entries {
		e.invalidated = true
	}
	n := len(c.entries)
	c.logger.Info().Int("entries", n).Msg("Invalidated all stats cache entries")
	return n
}

// Len returns the number of entries.
func (c *StatsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a copy of the activity counters.
func (c *StatsCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.TotalKeys = int64(len(c.entries))
	return s
}

// HitRate returns the percentage of reads answered by a fresh entry.
func (c *StatsCache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses + s.StaleServes
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Wait blocks until every background fetch started by Get has completed.
func (c *StatsCache) Wait() {
	c.wg.Wait()
}

// Close cancels fetches in flight and waits for background fetches to finish.
func (c *StatsCache) Close() {
	c.cancel()
	c.wg.Wait()
}

// entryLocked returns the entry for key, creating it if needed.
// Callers must hold c.mu for writing.
func (c *StatsCache) entryLocked(key Key, now time.Time) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{status: models.CacheStatusIdle, usedAt: now}
		c.entries[key] = e
		metrics.StatsCacheEntries.Set(float64(len(c.entries)))
	}
	return e
}

func (c *StatsCache) staleLocked(e *entry, now time.Time) bool {
	return e.stats == nil || e.invalidated || now.Sub(e.fetchedAt) >= c.staleAfter
}

// needsFetchLocked reports whether a read should trigger a fetch. A failed
// fetch is not retried by reads until StaleAfter has passed since it ended.
func (c *StatsCache) needsFetchLocked(e *entry, now time.Time) bool {
	if e.inFlight {
		return false
	}
	if e.invalidated || e.attemptedAt.IsZero() {
		return true
	}
	return c.staleLocked(e, now) && now.Sub(e.attemptedAt) >= c.staleAfter
}

// startFetchLocked marks e as loading and registers a fetch for key, or
// joins the one already registered. Callers must hold c.mu for writing.
//
// e.inFlight is true exactly while a fetch is registered for key: it is set
// here and cleared by store, which also forgets the key, both under c.mu.
func (c *StatsCache) startFetchLocked(key Key, e *entry) <-chan singleflight.Result {
	if !e.inFlight {
		e.fetchGen = c.generation
	}
	e.inFlight = true
	e.status = models.CacheStatusLoading

	ch := c.group.DoChan(key.String(), func() (any, error) {
		c.fetch(key)
		return nil, nil
	})

	c.wg.Add(1)
	done := make(chan singleflight.Result, 1)
	go func() {
		defer c.wg.Done()
		done <- <-ch
	}()
	return done
}

// fetch performs one fetch for key and stores the outcome.
func (c *StatsCache) fetch(key Key) {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.fetchTimeout)
	defer cancel()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	c.mu.Lock()
	c.stats.Fetches++
	c.mu.Unlock()

	log := c.logger.With().
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Str("timeframe", key.Timeframe.String()).
		Bool("forced", key.Forced).
		Logger()
	log.Debug().Msg("Fetching data quality stats")

	start := time.Now()
	stats, err := c.fetcher.FetchStats(ctx, key.Timeframe, key.Forced)
	if err == nil && stats == nil {
		err = errEmptyResponse
	}
	duration := time.Since(start)
	metrics.RecordStatsFetch(key.Timeframe.String(), key.Forced, duration, err)

	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("Data quality stats fetch failed")
	} else {
		log.Info().Dur("duration", duration).Str("last_updated", stats.LastUpdated).Msg("Data quality stats fetched")
	}

	c.store(key, stats, err)
}

// store records a fetch outcome. A successful forced fetch is also written
// into the non-forced entry for the same timeframe in the same critical
// section.
func (c *StatsCache) store(key Key, stats *models.DataQualityStats, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The next caller for key must start a new fetch rather than join this
	// finished one.
	c.group.Forget(key.String())

	now := c.clock.Now()
	e := c.entryLocked(key, now)
	e.inFlight = false
	e.attemptedAt = now
	e.usedAt = now

	if err != nil {
		e.err = ErrorPrefix + err.Error()
		e.status = models.CacheStatusError
		return
	}

	outdated := e.fetchGen != c.generation
	setFresh(e, stats, now)

	if key.Forced {
		plain := c.entryLocked(Key{Timeframe: key.Timeframe}, now)
		setFresh(plain, stats, now)
		plain.usedAt = now
		if plain.inFlight {
			plain.status = models.CacheStatusLoading
		}
		c.logger.Debug().Str("timeframe", key.Timeframe.String()).Msg("Forced stats written to both cache entries")
		if outdated {
			c.refetchLocked(key, e)
			c.refetchLocked(Key{Timeframe: key.Timeframe}, plain)
		}
		return
	}

	if outdated {
		c.refetchLocked(key, e)
	}
}

// refetchLocked keeps e stale after a fetch that began before the last
// InvalidateAll, and fetches it again unless a fetch is already running.
// Only read-path entries are refetched; forced entries belong to Refresh.
func (c *StatsCache) refetchLocked(key Key, e *entry) {
	e.invalidated = true
	if key.Forced || e.inFlight {
		return
	}
	c.logger.Debug().Str("timeframe", key.Timeframe.String()).Msg("Fetch outdated by invalidation, fetching again")
	c.startFetchLocked(key, e)
}

func setFresh(e *entry, stats *models.DataQualityStats, now time.Time) {
	e.stats = stats
	e.fetchedAt = now
	e.attemptedAt = now
	e.err = ""
	e.status = models.CacheStatusIdle
	e.invalidated = false
}

func (c *StatsCache) snapshotLocked(key Key, e *entry, now time.Time) Snapshot {
	s := Snapshot{
		Timeframe: key.Timeframe,
		Forced:    key.Forced,
		Stats:     e.stats,
		Loading:   e.inFlight,
		Error:     e.err,
		Status:    e.status,
		Stale:     c.staleLocked(e, now),
	}
	if !e.fetchedAt.IsZero() {
		t := e.fetchedAt
		s.FetchedAt = &t
	}
	return s
}
