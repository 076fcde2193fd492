// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package cache

import (
	"context"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/metrics"
)

// EvictExpired removes entries unused for longer than the GC horizon and
// returns how many were removed. Entries with a fetch in flight are kept.
func (c *StatsCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, e := range c.entries {
		if e.inFlight || now.Sub(e.usedAt) < c.gcAfter {
			continue
		}
		delete(c.entries, key)
		evicted++
		c.logger.Debug().Str("key", key.String()).Dur("idle", now.Sub(e.usedAt)).Msg("Evicted stats cache entry")
	}

	c.stats.Evictions += int64(evicted)
	c.stats.LastCleanup = now
	metrics.StatsCacheEvictions.Add(float64(evicted))
	metrics.StatsCacheEntries.Set(float64(len(c.entries)))
	return evicted
}

// RunJanitor evicts expired entries every interval until ctx is done. It
// returns ctx.Err(), matching the suture.Service contract.
func (c *StatsCache) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info().Dur("interval", interval).Dur("gc_after", c.gcAfter).Msg("Stats cache janitor started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := c.EvictExpired(); n > 0 {
				c.logger.Info().Int("evicted", n).Msg("Stats cache cleanup")
			}
		}
	}
}
