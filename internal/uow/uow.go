package uow

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/models"
)

// CommandMeta identifies the command whose effects are being committed.
type CommandMeta struct {
	CommandName string
	CommandID   string
	PrincipalID string
	Timestamp   time.Time
}

// TxRepository persists one aggregate inside an open transaction, honouring
// the optimistic concurrency contract: insert at version 0 for never-saved
// aggregates, otherwise a conditional update on (id, version) that increments
// the stored version, failing with ConcurrentModificationError on zero rows.
type TxRepository interface {
	SaveWithTx(ctx context.Context, tx *gorm.DB, aggregate domain.Aggregate) (domain.Aggregate, error)
}

// UnitOfWork tracks the aggregates touched by one command and commits them,
// together with their pending events, as a single atomic step.
type UnitOfWork interface {
	// Track registers an aggregate with the repository that will save it.
	// Registrations are keyed by aggregate id; the last one wins, so an
	// aggregate touched twice in one command is committed once, in its
	// final state.
	Track(aggregate domain.Aggregate, repo TxRepository)

	// Commit persists every tracked aggregate and stages their events as
	// outbox rows in one database transaction, then best-effort flushes
	// the outbox into the event log. Any error inside the transaction
	// rolls everything back and propagates; flush errors are logged only.
	Commit(ctx context.Context, meta CommandMeta) error
}

// OutboxPayload is the serialized shape of a staged domain event. The inner
// Payload holds the event-specific data.
type OutboxPayload struct {
	EventID       string          `json:"event_id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	PrincipalID   string          `json:"principal_id"`
	CommandName   string          `json:"command_name"`
	CommandID     string          `json:"command_id"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type tracked struct {
	aggregate domain.Aggregate
	repo      TxRepository
}

// GormUnitOfWork implements UnitOfWork on a GORM database handle.
type GormUnitOfWork struct {
	db      *gorm.DB
	flusher *OutboxFlusher
	ids     clock.IDGenerator

	mu      sync.Mutex
	entries map[string]tracked
	order   []string
}

// NewGormUnitOfWork creates a unit of work. The flusher may be nil, in which
// case committed events stay in the outbox until a periodic flush picks
// them up.
func NewGormUnitOfWork(db *gorm.DB, flusher *OutboxFlusher, ids clock.IDGenerator) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:      db,
		flusher: flusher,
		ids:     ids,
		entries: make(map[string]tracked),
	}
}

// Track registers an aggregate for the next commit.
func (u *GormUnitOfWork) Track(aggregate domain.Aggregate, repo TxRepository) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id := aggregate.AggregateID()
	if _, seen := u.entries[id]; !seen {
		u.order = append(u.order, id)
	}
	u.entries[id] = tracked{aggregate: aggregate, repo: repo}
}

// Commit runs the commit protocol described on the UnitOfWork interface.
func (u *GormUnitOfWork) Commit(ctx context.Context, meta CommandMeta) error {
	u.mu.Lock()
	snapshot := make([]tracked, 0, len(u.order))
	for _, id := range u.order {
		snapshot = append(snapshot, u.entries[id])
	}
	u.mu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	events := collectEvents(snapshot)

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range snapshot {
			if _, err := entry.repo.SaveWithTx(ctx, tx, entry.aggregate); err != nil {
				return err
			}
		}

		for _, event := range events {
			row, err := u.buildOutboxRow(event, meta)
			if err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				return errors.Wrap(err, "failed to stage outbox message")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.mu.Lock()
	u.entries = make(map[string]tracked)
	u.order = nil
	u.mu.Unlock()

	log.Info().
		Str("command", meta.CommandName).
		Str("command_id", meta.CommandID).
		Int("aggregates", len(snapshot)).
		Int("events", len(events)).
		Msg("Unit of work committed")

	// The business transaction is durable at this point. A failed flush
	// leaves rows behind for the periodic re-flush, nothing more.
	if u.flusher != nil {
		if err := u.flusher.Flush(ctx); err != nil {
			log.Error().Err(err).
				Str("command", meta.CommandName).
				Msg("Outbox flush failed after commit, rows remain staged")
		}
	}
	return nil
}

func collectEvents(snapshot []tracked) []domain.Event {
	var events []domain.Event
	for _, entry := range snapshot {
		events = append(events, entry.aggregate.PendingEvents()...)
	}
	return events
}

func (u *GormUnitOfWork) buildOutboxRow(event domain.Event, meta CommandMeta) (models.OutboxMessage, error) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return models.OutboxMessage{}, errors.Wrap(err, "failed to marshal event payload")
	}

	payload := OutboxPayload{
		EventID:       u.ids.NewID(),
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.Type,
		PrincipalID:   event.PrincipalID,
		CommandName:   meta.CommandName,
		CommandID:     meta.CommandID,
		Payload:       data,
		OccurredAt:    event.OccurredAt,
	}

	blob, err := json.Marshal(payload)
	if err != nil {
		return models.OutboxMessage{}, errors.Wrap(err, "failed to marshal outbox payload")
	}

	return models.OutboxMessage{
		ID:      u.ids.NewID(),
		Payload: blob,
	}, nil
}

// Factory builds a fresh unit of work per logical operation.
type Factory func() UnitOfWork

// NewFactory returns a Factory producing GormUnitOfWork instances sharing
// one database handle and flusher.
func NewFactory(db *gorm.DB, flusher *OutboxFlusher, ids clock.IDGenerator) Factory {
	return func() UnitOfWork {
		return NewGormUnitOfWork(db, flusher, ids)
	}
}
