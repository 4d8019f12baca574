// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package services adapts server components to suture.Service.

  - BuildService: startup build and periodic rebuilds
  - RebuildSubscriberService: rebuilds on RebuildRequested events, with
    dedup and a minimum interval between builds
  - HTTPServerService: *http.Server with graceful shutdown
  - CacheSweepService: periodic reclaim of expired query results
  - NATSServerService: health watch and shutdown of the embedded NATS server

BuildRunner is shared by the build service, the subscriber and the admin
API so that every build is logged and counted the same way.
SnapshotNotifier is an engine publish hook announcing new snapshots on the
event bus.

Each service returns ctx.Err() on cancellation and a wrapped error on
failure, which the supervisor answers with a backoff restart.
*/
package services
