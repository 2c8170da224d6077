package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Order is the persisted form of an order aggregate. Line items and the
// shipping address are stored as JSON blobs; the order is the unit of
// consistency, not the line.
type Order struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      string    `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status          string    `gorm:"not null" json:"status"`
	Items           []byte    `gorm:"type:jsonb;not null" json:"items"`
	ShippingAddress []byte    `gorm:"type:jsonb;not null" json:"shipping_address"`
	TotalCents      int64     `gorm:"not null" json:"total_cents"`
	Currency        string    `gorm:"not null" json:"currency"`
	Version         int64     `gorm:"not null" json:"version"`
	PlacedAt        time.Time `gorm:"not null" json:"placed_at"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InventoryItem is the persisted form of an inventory aggregate.
type InventoryItem struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID        string    `gorm:"type:uuid;not null;uniqueIndex" json:"product_id"`
	SKU              string    `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	QuantityOnHand   int       `gorm:"not null;default:0" json:"quantity_on_hand"`
	QuantityReserved int       `gorm:"not null;default:0" json:"quantity_reserved"`
	ReorderPoint     int       `gorm:"not null;default:0" json:"reorder_point"`
	Version          int64     `gorm:"not null" json:"version"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Subscription is the persisted form of a subscription aggregate.
type Subscription struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      string    `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status          string    `gorm:"not null" json:"status"`
	IntervalDays    int       `gorm:"not null" json:"interval_days"`
	NextDeliveryAt  time.Time `gorm:"not null;index" json:"next_delivery_at"`
	Items           []byte    `gorm:"type:jsonb;not null" json:"items"`
	ShippingAddress []byte    `gorm:"type:jsonb;not null" json:"shipping_address"`
	Version         int64     `gorm:"not null" json:"version"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// OutboxMessage is a staged domain event written in the same transaction as
// the business mutation. FlushedAt stays null until the row has been moved
// into the event log.
type OutboxMessage struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	Payload   []byte     `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	FlushedAt *time.Time `gorm:"index" json:"flushed_at"`
}

// EventLogEntry is the durable, queryable projection of an outbox message,
// deduplicated on the event id.
type EventLogEntry struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	EventID       string    `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	AggregateID   string    `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	AggregateType string    `gorm:"not null" json:"aggregate_type"`
	EventType     string    `gorm:"not null;index" json:"event_type"`
	PrincipalID   string    `gorm:"not null" json:"principal_id"`
	CommandName   string    `gorm:"not null" json:"command_name"`
	CommandID     string    `gorm:"type:uuid;not null" json:"command_id"`
	Payload       []byte    `gorm:"type:jsonb" json:"payload"`
	OccurredAt    time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SetupModels runs the schema migrations.
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Order{},
		&InventoryItem{},
		&Subscription{},
		&OutboxMessage{},
		&EventLogEntry{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}
	return nil
}
