// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package websocket pushes dashboard events to connected browsers.

A single Hub owns the client set. Each Client runs a read pump, which answers
{"type":"ping"} with {"type":"pong"}, and a write pump, which drains the
client's send buffer and sends protocol pings every 54 seconds.

Message Types:

  - stats_refreshed: {timeframe, forced, last_updated} after a refresh succeeded
  - dashboard_reload: {reason, timestamp} after an import or an explicit reload
  - import_completed: {updated, created, failed} tallies of a finished import

Every message is a JSON envelope:

	{"type": "stats_refreshed", "data": {"timeframe": "month", "forced": true, "last_updated": "..."}}

Usage:

	hub := websocket.NewHub()
	supervisor.Add(hub) // Hub implements suture.Service

	hub.BroadcastDashboardReload("import")

Broadcasting never blocks the caller. When the hub queue is full the message
is dropped; when one client's buffer is full that client is disconnected.
Both are counted in websocket_messages_dropped_total.
*/
package websocket
