// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/bookshelf/internal/events"
	"github.com/tomtom215/bookshelf/internal/metrics"
	"github.com/tomtom215/bookshelf/internal/recommend"
)

// RebuildSource delivers rebuild requests. Satisfied by *events.Bus.
type RebuildSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Seen(msg *message.Message) bool
	RebuildTopic() string
}

// RebuildSubscriberService consumes RebuildRequested events and runs a
// build for each one. Redelivered messages are dropped, and requests
// arriving faster than minInterval are acknowledged without building.
type RebuildSubscriberService struct {
	source  RebuildSource
	runner  Rebuilder
	limiter *rate.Limiter
	logger  zerolog.Logger
	name    string
}

// NewRebuildSubscriberService creates the subscriber. A minInterval of zero
// disables throttling.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildSubscriberService(source RebuildSource, runner Rebuilder, minInterval time.Duration, logger zerolog.Logger) *RebuildSubscriberService {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &RebuildSubscriberService{
		source:  source,
		runner:  runner,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("service", "rebuild-subscriber").Logger(),
		name:    "rebuild-subscriber",
	}
}

// Serve implements suture.Service. It returns an error when the
// subscription closes before ctx is canceled so the supervisor resubscribes.
func (s *RebuildSubscriberService) Serve(ctx context.Context) error {
	topic := s.source.RebuildTopic()
	msgs, err := s.source.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s.logger.Info().Str("topic", topic).Msg("rebuild subscriber started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", topic)
			}
			metrics.RecordEventConsumed(topic)
			s.handle(ctx, msg)
		}
	}
}

// handle processes one message. Every message is acked: a failed build is
// not retried by redelivery, the next request or tick covers it.
func (s *RebuildSubscriberService) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	log := s.logger.With().Str("message_uuid", msg.UUID).Logger()

	if s.source.Seen(msg) {
		log.Debug().Msg("duplicate rebuild request dropped")
		return
	}

	req, err := events.Decode[events.RebuildRequested](msg)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		log.Warn().Err(err).Msg("malformed rebuild request dropped")
		return
	}

	if !s.limiter.Allow() {
		metrics.RecordRebuildThrottled()
		log.Info().Str("request_id", req.RequestID).Msg("rebuild request throttled")
		return
	}

	trigger := "event"
	if req.RequestedBy != "" {
		trigger = "event:" + req.RequestedBy
	}

	snap, err := s.runner.Rebuild(ctx, trigger)
	if err != nil {
		if !errors.Is(err, recommend.ErrBuildInProgress) {
			log.Warn().Err(err).Str("request_id", req.RequestID).Msg("requested rebuild failed")
		}
		return
	}

	log.Info().
		Str("request_id", req.RequestID).
		Str("reason", req.Reason).
		Str("snapshot_id", snap.ID).
		Msg("requested rebuild complete")
}

// String returns the service name for logging.
func (s *RebuildSubscriberService) String() string {
	return s.name
}
