package uow

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/models"
)

// EventIndexer pushes a flushed event into the search index. Best-effort.
type EventIndexer interface {
	IndexEvent(ctx context.Context, entry models.EventLogEntry) error
}

// EventPublisher relays a flushed event to external consumers. Best-effort.
type EventPublisher interface {
	PublishEvent(ctx context.Context, entry models.EventLogEntry) error
}

// OutboxFlusher moves staged outbox messages into the permanent event log.
// Flushing is idempotent and safe to run from concurrent callers: the event
// log insert skips duplicate event ids and marking rows flushed twice is
// harmless, so a crash between commit and flush only delays delivery.
type OutboxFlusher struct {
	db        *gorm.DB
	clk       clock.Clock
	indexer   EventIndexer
	publisher EventPublisher
}

// NewOutboxFlusher creates a flusher. Indexer and publisher may be nil.
func NewOutboxFlusher(db *gorm.DB, clk clock.Clock, indexer EventIndexer, publisher EventPublisher) *OutboxFlusher {
	return &OutboxFlusher{db: db, clk: clk, indexer: indexer, publisher: publisher}
}

// Flush selects all unflushed outbox messages, inserts them into the event
// log and marks them flushed. Returns without touching storage when the
// outbox is empty.
func (f *OutboxFlusher) Flush(ctx context.Context) error {
	var staged []models.OutboxMessage
	err := f.db.WithContext(ctx).
		Where("flushed_at IS NULL").
		Order("created_at ASC").
		Find(&staged).Error
	if err != nil {
		return errors.Wrap(err, "failed to load staged outbox messages")
	}
	if len(staged) == 0 {
		return nil
	}

	entries := make([]models.EventLogEntry, 0, len(staged))
	flushedIDs := make([]string, 0, len(staged))
	for _, msg := range staged {
		var payload OutboxPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errors.Wrapf(err, "outbox message %s has an unreadable payload", msg.ID)
		}

		entry := models.EventLogEntry{
			ID:            uuid.New().String(),
			EventID:       payload.EventID,
			AggregateID:   payload.AggregateID,
			AggregateType: payload.AggregateType,
			EventType:     payload.EventType,
			PrincipalID:   payload.PrincipalID,
			CommandName:   payload.CommandName,
			CommandID:     payload.CommandID,
			Payload:       payload.Payload,
			OccurredAt:    payload.OccurredAt,
		}

		// Duplicate event ids are skipped so a retried flush after a
		// crash never double-appends to the log.
		err := f.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}},
				DoNothing: true,
			}).
			Create(&entry).Error
		if err != nil {
			return errors.Wrapf(err, "failed to append event %s to the event log", payload.EventID)
		}

		entries = append(entries, entry)
		flushedIDs = append(flushedIDs, msg.ID)
	}

	now := f.clk.Now()
	err = f.db.WithContext(ctx).
		Model(&models.OutboxMessage{}).
		Where("id IN ?", flushedIDs).
		Update("flushed_at", now).Error
	if err != nil {
		return errors.Wrap(err, "failed to mark outbox messages as flushed")
	}

	log.Info().Int("events", len(entries)).Msg("Outbox flushed to event log")

	// Downstream fan-out never fails the flush: the event log row is the
	// durable truth.
	for _, entry := range entries {
		if f.indexer != nil {
			if err := f.indexer.IndexEvent(ctx, entry); err != nil {
				log.Warn().Err(err).
					Str("event_id", entry.EventID).
					Msg("Failed to index flushed event")
			}
		}
		if f.publisher != nil {
			if err := f.publisher.PublishEvent(ctx, entry); err != nil {
				log.Warn().Err(err).
					Str("event_id", entry.EventID).
					Msg("Failed to publish flushed event")
			}
		}
	}
	return nil
}
