package commands

import (
	"context"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
	"example.com/storefront/services/orders/internal/validation"
)

// CancelOrderParams identify the order to cancel.
type CancelOrderParams struct {
	OrderID string `json:"order_id" validate:"required"`
}

// CancelOrderResult reports the cancelled order.
type CancelOrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// CancelOrder moves an order to CANCELLED and releases exactly the reserved
// quantities of its line items.
type CancelOrder struct {
	base
	inventory InventoryStore
	orders    OrderStore
}

// NewCancelOrder creates the command.
func NewCancelOrder(u uow.UnitOfWork, inventory InventoryStore, orders OrderStore, clk clock.Clock, ids clock.IDGenerator) *CancelOrder {
	return &CancelOrder{
		base:      newBase("CancelOrder", u, clk, ids),
		inventory: inventory,
		orders:    orders,
	}
}

// Execute cancels the order. The status table rejects cancellation of
// shipped or delivered orders before any stock is touched.
func (c *CancelOrder) Execute(ctx context.Context, principal domain.Principal, params CancelOrderParams) (CancelOrderResult, error) {
	if err := validation.Struct(params); err != nil {
		return CancelOrderResult{}, err
	}

	order, err := c.orders.FindByID(ctx, params.OrderID)
	if err != nil {
		return CancelOrderResult{}, err
	}

	now := c.clk.Now()
	cancelled, err := order.TransitionTo(domain.OrderCancelledStatus, principal, now)
	if err != nil {
		return CancelOrderResult{}, err
	}

	// Release per product; lines for the same product accumulate.
	released := make(map[string]domain.InventoryItem)
	for _, line := range cancelled.Items() {
		item, ok := released[line.ProductID]
		if !ok {
			item, err = c.inventory.FindByProductID(ctx, line.ProductID)
			if err != nil {
				return CancelOrderResult{}, err
			}
		}
		item, err = item.Release(line.Quantity, principal, now)
		if err != nil {
			return CancelOrderResult{}, err
		}
		released[line.ProductID] = item
	}

	for _, item := range released {
		c.inventory.Save(c.uow, item)
	}
	c.orders.Save(c.uow, cancelled)

	return CancelOrderResult{
		OrderID: cancelled.AggregateID(),
		Status:  string(cancelled.Status()),
	}, nil
}
