// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/bookshelf/internal/recommend"
)

// Metadata keys set on every message.
const (
	MetadataEventType = "event_type"
	MetadataSource    = "source"
)

// Event type names.
const (
	TypeRebuildRequested  = "rebuild_requested"
	TypeSnapshotPublished = "snapshot_published"
)

// ErrInvalidEvent is returned for events missing required fields.
var ErrInvalidEvent = errors.New("invalid event")

// RebuildRequested asks the service to rebuild the engine snapshot.
type RebuildRequested struct {
	RequestID   string    `json:"request_id"`
	Reason      string    `json:"reason,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewRebuildRequested creates a request with a fresh id.
func NewRebuildRequested(reason, requestedBy string) RebuildRequested {
	return RebuildRequested{
		RequestID:   uuid.New().String(),
		Reason:      reason,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e RebuildRequested) Validate() error {
	if e.RequestID == "" {
		return fmt.Errorf("%w: request_id is required", ErrInvalidEvent)
	}
	return nil
}

// SnapshotPublished announces a newly published engine snapshot.
type SnapshotPublished struct {
	SnapshotID string    `json:"snapshot_id"`
	Users      int       `json:"users"`
	Items      int       `json:"items"`
	NonZero    int       `json:"non_zero"`
	Sparsity   float64   `json:"sparsity"`
	BuiltAt    time.Time `json:"built_at"`
}

// SnapshotPublishedFrom summarizes a snapshot's build report.
func SnapshotPublishedFrom(s *recommend.Snapshot) SnapshotPublished {
	r := s.Report
	return SnapshotPublished{
		SnapshotID: s.ID,
		Users:      r.Users,
		Items:      r.Items,
		NonZero:    r.NonZero,
		Sparsity:   r.Sparsity,
		BuiltAt:    s.BuiltAt,
	}
}

// Validate checks required fields.
func (e SnapshotPublished) Validate() error {
	if e.SnapshotID == "" {
		return fmt.Errorf("%w: snapshot_id is required", ErrInvalidEvent)
	}
	return nil
}

type validatable interface {
	Validate() error
}

// NewMessage validates and encodes payload into a Watermill message.
func NewMessage(eventType string, payload validatable) (*message.Message, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	msg.Metadata.Set(MetadataEventType, eventType)
	msg.Metadata.Set(MetadataSource, "bookshelf")
	return msg, nil
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	return v, nil
}
