// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/bookshelf/internal/api"
	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/recommend"
	"github.com/tomtom215/bookshelf/internal/supervisor"
	"github.com/tomtom215/bookshelf/internal/supervisor/services"
)

// eventComponents holds the event bus and the optional embedded NATS server.
// Both are nil when events are disabled.
type eventComponents struct {
	bus    *events.Bus
	server *events.EmbeddedServer
}

// initEvents starts the embedded NATS server if configured, connects the
// bus, hooks snapshot notifications into the engine and adds the messaging
// services to the tree.
func initEvents(cfg *config.Config, tree *supervisor.SupervisorTree, engine *recommend.Engine, runner services.Rebuilder) (*eventComponents, error) {
	c := &eventComponents{}
	if !cfg.Events.Enabled {
		logging.Info().Msg("Events disabled (EVENTS_ENABLED=false); admin rebuilds run in the background")
		return c, nil
	}

	var url string
	if cfg.Events.Backend == "nats" && cfg.Events.EmbeddedServer {
		ns, err := events.NewEmbeddedServer(cfg.Events.EmbeddedHost, cfg.Events.EmbeddedPort)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		c.server = ns
		url = ns.ClientURL()
		tree.AddMessagingService(services.NewNATSServerService(ns))
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	bus, err := events.NewBus(&cfg.Events, url, logging.Logger())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	c.bus = bus

	engine.OnPublish(services.SnapshotNotifier(bus, logging.Logger()))
	tree.AddMessagingService(services.NewRebuildSubscriberService(bus, runner, cfg.Events.MinRebuildInterval, logging.Logger()))

	logging.Info().
		Str("backend", cfg.Events.Backend).
		Str("rebuild_topic", bus.RebuildTopic()).
		Dur("min_rebuild_interval", cfg.Events.MinRebuildInterval).
		Msg("Rebuild subscriber added to supervisor tree")
	return c, nil
}

// RebuildPublisher returns the bus as an api.RebuildPublisher, or nil when
// events are disabled so the admin API builds in the background.
func (c *eventComponents) RebuildPublisher() api.RebuildPublisher {
	if c.bus == nil {
		return nil
	}
	return c.bus
}

// Close closes the bus. The embedded server is only shut down here when the
// supervisor never ran it.
func (c *eventComponents) Close() {
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if c.server != nil && c.server.IsRunning() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}
}
