// Package commands implements the business operations of the order backend.
// A command is constructed with a unit of work and the repositories it needs,
// mutates aggregates in memory through them, and registers the results with
// the unit of work. The caller commits. Commands are stateless beyond their
// inputs and several commands may share one unit of work within a single
// logical operation.
package commands

import (
	"context"
	"time"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
)

// InventoryStore is the inventory repository surface commands depend on.
type InventoryStore interface {
	FindByProductID(ctx context.Context, productID string) (domain.InventoryItem, error)
	Save(u uow.UnitOfWork, item domain.InventoryItem)
}

// OrderStore is the order repository surface commands depend on.
type OrderStore interface {
	FindByID(ctx context.Context, id string) (domain.Order, error)
	Save(u uow.UnitOfWork, order domain.Order)
}

// SubscriptionStore is the subscription repository surface commands depend on.
type SubscriptionStore interface {
	FindByID(ctx context.Context, id string) (domain.Subscription, error)
	FindDue(ctx context.Context, before time.Time) ([]domain.Subscription, error)
	Save(u uow.UnitOfWork, sub domain.Subscription)
}

// base carries what every command shares: the unit of work, clock, id
// generator, and the command's own identity assigned at construction.
type base struct {
	uow      uow.UnitOfWork
	clk      clock.Clock
	ids      clock.IDGenerator
	name     string
	id       string
	issuedAt time.Time
}

func newBase(name string, u uow.UnitOfWork, clk clock.Clock, ids clock.IDGenerator) base {
	return base{
		uow:      u,
		clk:      clk,
		ids:      ids,
		name:     name,
		id:       ids.NewID(),
		issuedAt: clk.Now(),
	}
}

// ID returns the command's identity.
func (b base) ID() string { return b.id }

// IssuedAt returns the command's construction time.
func (b base) IssuedAt() time.Time { return b.issuedAt }

// Meta builds the commit metadata for this command acting as the principal.
func (b base) Meta(principal domain.Principal) uow.CommandMeta {
	return uow.CommandMeta{
		CommandName: b.name,
		CommandID:   b.id,
		PrincipalID: principal.ID,
		Timestamp:   b.issuedAt,
	}
}
