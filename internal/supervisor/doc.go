// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package supervisor runs the console's long-lived services under suture v4.

# Tree

	root ("voodoo-quality")
	├── background-layer
	│   ├── stats-cache-janitor   evicts entries unused for the GC horizon
	│   └── scheduler             nightly forced refresh (if enabled)
	├── messaging-layer
	│   └── websocket-hub
	└── api-layer
	    └── http-server

A service that returns an error is restarted with backoff. Failures in one
layer do not stop the others: the API keeps serving cached statistics while
the scheduler restarts.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBackgroundService(services.NewCacheJanitorService(statsCache, time.Minute))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, ":3870", 10*time.Second))
	return tree.Serve(ctx)

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.
*/
package supervisor
