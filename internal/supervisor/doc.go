// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package supervisor runs the long-lived services of the server under a
suture v4 supervisor tree.

	bookshelf
	├── build-layer
	│   └── BuildService (startup build and periodic rebuilds)
	├── messaging-layer
	│   ├── NATSServerService (if NATS_EMBEDDED)
	│   └── RebuildSubscriberService (if EVENTS_ENABLED)
	└── api-layer
	    ├── HTTPServerService
	    └── CacheSweepService (if the query cache is enabled)

Each layer restarts its own services with exponential backoff. Supervisor
events are logged through a sutureslog hook on the root supervisor.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBuildService(services.NewBuildService(runner, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
