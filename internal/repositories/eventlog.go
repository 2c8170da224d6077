package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/models"
)

// EventLogRepository reads the permanent event log.
type EventLogRepository struct {
	db *gorm.DB
}

// NewEventLogRepository creates a new event log repository.
func NewEventLogRepository(db *gorm.DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// ListByAggregate returns all logged events for one aggregate in occurrence
// order.
func (r *EventLogRepository) ListByAggregate(ctx context.Context, aggregateID string) ([]models.EventLogEntry, error) {
	var entries []models.EventLogEntry
	err := r.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("occurred_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events for aggregate")
	}
	return entries, nil
}

// ListRecent returns the most recent logged events, newest first.
func (r *EventLogRepository) ListRecent(ctx context.Context, limit int) ([]models.EventLogEntry, error) {
	var entries []models.EventLogEntry
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent events")
	}
	return entries, nil
}

// CountUnflushed returns the number of outbox messages still waiting to be
// moved into the event log.
func (r *EventLogRepository) CountUnflushed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxMessage{}).
		Where("flushed_at IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count unflushed outbox messages")
	}
	return count, nil
}
