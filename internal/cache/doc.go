// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package cache holds the data quality statistics cache.

Entries are keyed by (timeframe, forced). Each entry keeps the last good
snapshot, the last error and whether a fetch is in flight.

# Read Path

Get(T) serves the (T, not forced) entry immediately and revalidates it in the
background when it is missing, invalidated by InvalidateAll or older than the
staleness window (30s by default):

	snap := c.Get(models.TimeframeMonth)
	if snap.Loading && snap.Stats == nil {
	    // first visit, nothing to show yet
	}

# Write Path

Refresh(ctx, T, force) fetches now and waits. With force set the catalog
regenerates its statistics, and a successful result lands in both (T, true)
and (T, false) in one critical section.

A failed fetch sets Error to "Failed to fetch data quality stats: <cause>"
and keeps the previous snapshot. The next success clears it.

# Coalescing

golang.org/x/sync/singleflight guarantees one catalog request per key at a
time. Later callers, Get or Refresh, share the in-flight result.

# Garbage Collection

Entries unused for the GC horizon (5 minutes by default) are removed by
RunJanitor, which the supervisor runs as a service.

# Testing

Options.Clock injects time; tests advance a fake clock instead of sleeping.
Wait blocks until background fetches started by Get complete.
*/
package cache
