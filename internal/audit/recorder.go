// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package audit

import (
	"context"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/frankdean/trip-server-sub001/internal/logging"
)

// auditKeyPrefix namespaces audit records inside the shared Badger DB.
const auditKeyPrefix = "audit:"

// DefaultRetention is how long audit records are kept. Badger's TTL
// expires them without a cleanup job.
const DefaultRetention = 90 * 24 * time.Hour

// Recorder persists audit events.
type Recorder interface {
	// Record stores the event. Failures are logged, never surfaced to the
	// request that triggered the event; auditing must not break serving.
	Record(ctx context.Context, event *Event)

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]*Event, error)
}

// BadgerRecorder stores audit events in the credential store's Badger DB
// under their own key prefix, each with a retention TTL.
type BadgerRecorder struct {
	db        *badger.DB
	retention time.Duration
}

// NewBadgerRecorder creates a recorder over db.
func NewBadgerRecorder(db *badger.DB) *BadgerRecorder {
	return &BadgerRecorder{db: db, retention: DefaultRetention}
}

// Record implements Recorder. The key embeds a reverse timestamp so a
// forward iteration yields newest first.
func (r *BadgerRecorder) Record(ctx context.Context, event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = logging.RequestIDFromContext(ctx)
	}

	value, err := json.Marshal(event)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to encode audit event")
		return
	}

	key := fmt.Sprintf("%s%020d:%s", auditKeyPrefix, reverseStamp(event.Timestamp), event.ID)
	err = r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(r.retention)
		return txn.SetEntry(entry)
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("type", string(event.Type)).Msg("failed to store audit event")
	}
}

// Recent implements Recorder.
func (r *BadgerRecorder) Recent(_ context.Context, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	events := make([]*Event, 0, limit)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(events) < limit; it.Next() {
			var event Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("failed to decode audit event: %w", err)
			}
			events = append(events, &event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// reverseStamp maps a timestamp so later times sort first in key order.
func reverseStamp(t time.Time) int64 {
	return (1<<62 - 1) - t.UnixNano()
}
