// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package services adapts console components to suture's Serve(ctx) error
contract.

HTTPServerService binds its address on every start, so a port conflict fails
that attempt instead of a background goroutine, then serves until the context
is canceled and shuts down gracefully within a timeout. CacheJanitorService runs the stats cache's eviction loop at a
fixed interval.

The websocket hub and the refresh scheduler implement Serve themselves and
are added to the tree directly.

Every service returns ctx.Err() on a requested shutdown and a wrapped error
on failure, which tells the supervisor to restart it with backoff.
*/
package services
