// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookshelf/internal/cache"
	"github.com/tomtom215/bookshelf/internal/config"
	"github.com/tomtom215/bookshelf/internal/logging"
	"github.com/tomtom215/bookshelf/internal/metrics"
)

const (
	// dedupCapacity bounds the set of recently seen message ids.
	dedupCapacity = 10000

	// dedupTTL is how long a message id is remembered.
	dedupTTL = 10 * time.Minute

	queueGroup = "bookshelf"
)

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus publishes and subscribes to catalog events.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closers    []func() error

	rebuildTopic  string
	snapshotTopic string

	dedup  *cache.LRU[struct{}]
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus for the configured backend. url overrides
// cfg.NATSURL when non-empty, as when an embedded server is running.
func NewBus(cfg *config.EventsConfig, url string, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "events").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	b := &Bus{
		rebuildTopic:  cfg.RebuildTopic,
		snapshotTopic: cfg.SnapshotTopic,
		dedup:         cache.NewLRU[struct{}](dedupCapacity, dedupTTL),
		logger:        logger,
	}

	switch cfg.Backend {
	case "", "gochannel":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		b.publisher, b.subscriber = ch, ch
		b.closers = []func() error{ch.Close}

	case "nats":
		if url == "" {
			url = cfg.NATSURL
		}
		pub, sub, err := newNATSPubSub(url, wmLogger)
		if err != nil {
			return nil, err
		}
		b.publisher, b.subscriber = pub, sub
		b.closers = []func() error{sub.Close, pub.Close}

	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}

	logger.Info().Str("backend", cfg.Backend).Msg("Event bus ready")
	return b, nil
}

// newNATSPubSub connects a publisher and a queue subscriber to core NATS.
func newNATSPubSub(url string, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
	jsConfig := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   jsConfig,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: queueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        jsConfig,
	}, logger)
	if err != nil {
		pub.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return pub, sub, nil
}

// RebuildTopic returns the topic rebuild requests are published on.
func (b *Bus) RebuildTopic() string { return b.rebuildTopic }

// SnapshotTopic returns the topic snapshot notifications are published on.
func (b *Bus) SnapshotTopic() string { return b.snapshotTopic }

// PublishRebuild publishes a rebuild request.
func (b *Bus) PublishRebuild(ctx context.Context, e RebuildRequested) error {
	return b.publish(ctx, b.rebuildTopic, TypeRebuildRequested, e)
}

// PublishSnapshot publishes a snapshot notification.
func (b *Bus) PublishSnapshot(ctx context.Context, e SnapshotPublished) error {
	return b.publish(ctx, b.snapshotTopic, TypeSnapshotPublished, e)
}

func (b *Bus) publish(ctx context.Context, topic, eventType string, payload validatable) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	msg, err := NewMessage(eventType, payload)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	metrics.RecordEventPublished(topic)
	b.logger.Debug().Str("topic", topic).Str("message_uuid", msg.UUID).Msg("Event published")
	return nil
}

// Subscribe returns the message channel for topic. The channel closes when
// ctx is canceled or the bus is closed. Consumers must Ack or Nack every
// message.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Seen reports whether msg was already delivered within the dedup window.
func (b *Bus) Seen(msg *message.Message) bool {
	return b.dedup.IsDuplicate(msg.UUID)
}

// Close shuts the bus down. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
