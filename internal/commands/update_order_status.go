package commands

import (
	"context"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
	"example.com/storefront/services/orders/internal/validation"
)

// UpdateOrderStatusParams identify the order and the target status.
type UpdateOrderStatusParams struct {
	OrderID    string `json:"order_id" validate:"required"`
	NextStatus string `json:"next_status" validate:"required"`
}

// UpdateOrderStatusResult reports the transition that was applied.
type UpdateOrderStatusResult struct {
	OrderID        string `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// UpdateOrderStatus moves an order along one forward edge of the status
// machine (confirm, start processing, ship, deliver). Cancellation goes
// through CancelOrder because it must also release reserved stock.
type UpdateOrderStatus struct {
	base
	orders OrderStore
}

// NewUpdateOrderStatus creates the command.
func NewUpdateOrderStatus(u uow.UnitOfWork, orders OrderStore, clk clock.Clock, ids clock.IDGenerator) *UpdateOrderStatus {
	return &UpdateOrderStatus{
		base:   newBase("UpdateOrderStatus", u, clk, ids),
		orders: orders,
	}
}

// Execute applies the transition. Illegal edges fail fast with the attempted
// edge named in the error.
func (c *UpdateOrderStatus) Execute(ctx context.Context, principal domain.Principal, params UpdateOrderStatusParams) (UpdateOrderStatusResult, error) {
	if err := validation.Struct(params); err != nil {
		return UpdateOrderStatusResult{}, err
	}

	next := domain.OrderStatus(params.NextStatus)
	if next == domain.OrderCancelledStatus {
		return UpdateOrderStatusResult{}, &domain.ValidationError{
			Field:  "next_status",
			Reason: "cancellation must go through the cancel operation",
		}
	}

	order, err := c.orders.FindByID(ctx, params.OrderID)
	if err != nil {
		return UpdateOrderStatusResult{}, err
	}

	previous := order.Status()
	updated, err := order.TransitionTo(next, principal, c.clk.Now())
	if err != nil {
		return UpdateOrderStatusResult{}, err
	}

	c.orders.Save(c.uow, updated)

	return UpdateOrderStatusResult{
		OrderID:        updated.AggregateID(),
		PreviousStatus: string(previous),
		Status:         string(updated.Status()),
	}, nil
}
