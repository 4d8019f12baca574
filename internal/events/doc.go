// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package events carries catalog notifications over Watermill.

Two topics are used:

  - rebuild topic (default catalog.rebuild): RebuildRequested, published by
    the admin API and consumed by the rebuild subscriber service
  - snapshot topic (default catalog.snapshot): SnapshotPublished, emitted
    after every successful build

The Bus runs on an in-process Go channel by default, or on core NATS when
the nats backend is selected. EmbeddedServer starts a NATS server inside
the process for single-node deployments.

Payloads are JSON (goccy/go-json). Every message carries a UUID; consumers
use Bus.Seen to drop redeliveries.
*/
package events
