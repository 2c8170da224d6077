package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
)

// RecurrenceResult summarizes one processing run.
type RecurrenceResult struct {
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors,omitempty"`
}

// RecurrenceProcessor turns due subscriptions into orders. Each subscription
// is handled in its own unit of work so one failure never rolls back or
// blocks the rest of the batch.
type RecurrenceProcessor struct {
	factory       uow.Factory
	inventory     InventoryStore
	orders        OrderStore
	subscriptions SubscriptionStore
	clk           clock.Clock
	ids           clock.IDGenerator
}

// NewRecurrenceProcessor creates the processor.
func NewRecurrenceProcessor(factory uow.Factory, inventory InventoryStore, orders OrderStore, subscriptions SubscriptionStore, clk clock.Clock, ids clock.IDGenerator) *RecurrenceProcessor {
	return &RecurrenceProcessor{
		factory:       factory,
		inventory:     inventory,
		orders:        orders,
		subscriptions: subscriptions,
		clk:           clk,
		ids:           ids,
	}
}

// Run processes every subscription due at the current time. A subscription
// that fails, out of stock or lost a concurrent update, stays at its current
// due date and is retried on the next run.
func (p *RecurrenceProcessor) Run(ctx context.Context) (RecurrenceResult, error) {
	now := p.clk.Now()
	due, err := p.subscriptions.FindDue(ctx, now)
	if err != nil {
		return RecurrenceResult{}, err
	}

	result := RecurrenceResult{Total: len(due)}
	for _, sub := range due {
		if err := p.processOne(ctx, sub); err != nil {
			log.Warn().Err(err).
				Str("subscription_id", sub.AggregateID()).
				Msg("Skipping due subscription")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", sub.AggregateID(), err))
			continue
		}
		result.Processed++
	}

	log.Info().
		Int("processed", result.Processed).
		Int("total", result.Total).
		Msg("Subscription recurrence run finished")
	return result, nil
}

func (p *RecurrenceProcessor) processOne(ctx context.Context, sub domain.Subscription) error {
	u := p.factory()
	principal := domain.Principal{ID: "scheduler"}
	now := p.clk.Now()

	place := NewPlaceOrder(u, p.inventory, p.orders, p.clk, p.ids)
	placed, err := place.Execute(ctx, principal, placementParams(sub))
	if err != nil {
		return err
	}

	advanced, err := sub.Advance(placed.OrderID, principal, now)
	if err != nil {
		return err
	}
	p.subscriptions.Save(u, advanced)

	return u.Commit(ctx, uow.CommandMeta{
		CommandName: "ProcessDueSubscription",
		CommandID:   p.ids.NewID(),
		PrincipalID: principal.ID,
		Timestamp:   now,
	})
}

func placementParams(sub domain.Subscription) PlaceOrderParams {
	items := sub.Items()
	lines := make([]OrderLineParams, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLineParams{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPrice.Cents,
			Currency:       item.UnitPrice.Currency,
		})
	}
	shipping := sub.ShippingAddress()
	return PlaceOrderParams{
		CustomerID: sub.CustomerID(),
		Items:      lines,
		Shipping: AddressParams{
			Line1:      shipping.Line1,
			City:       shipping.City,
			PostalCode: shipping.PostalCode,
			Country:    shipping.Country,
		},
	}
}
