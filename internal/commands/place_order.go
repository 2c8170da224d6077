package commands

import (
	"context"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
	"example.com/storefront/services/orders/internal/validation"
)

// OrderLineParams is one requested order line.
type OrderLineParams struct {
	ProductID      string `json:"product_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
	Currency       string `json:"currency" validate:"required"`
}

// AddressParams is a shipping address in request form.
type AddressParams struct {
	Line1      string `json:"line1" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PlaceOrderParams are the inputs to order placement.
type PlaceOrderParams struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	Items      []OrderLineParams `json:"items" validate:"required,min=1,dive"`
	Shipping   AddressParams     `json:"shipping" validate:"required"`
}

// PlaceOrderResult reports the placed order.
type PlaceOrderResult struct {
	OrderID     string       `json:"order_id"`
	Status      string       `json:"status"`
	TotalAmount domain.Money `json:"total_amount"`
}

// PlaceOrder reserves stock for every requested line and creates the order.
// Everything it touches is committed in one transaction by the caller: a
// doomed order never leaves a partial reservation behind.
type PlaceOrder struct {
	base
	inventory InventoryStore
	orders    OrderStore
}

// NewPlaceOrder creates the command.
func NewPlaceOrder(u uow.UnitOfWork, inventory InventoryStore, orders OrderStore, clk clock.Clock, ids clock.IDGenerator) *PlaceOrder {
	return &PlaceOrder{
		base:      newBase("PlaceOrder", u, clk, ids),
		inventory: inventory,
		orders:    orders,
	}
}

// Execute runs the placement. The availability pre-check aborts before any
// reservation when a single line cannot be satisfied; Reserve then performs
// the authoritative check against the loaded copy. Two racing placements on
// the same low-stock item are resolved at commit time by the version check,
// never by overcommitting.
func (c *PlaceOrder) Execute(ctx context.Context, principal domain.Principal, params PlaceOrderParams) (PlaceOrderResult, error) {
	if err := validation.Struct(params); err != nil {
		return PlaceOrderResult{}, err
	}

	// Pre-check availability across all lines before touching anything.
	// Lines for the same product share one loaded copy so their demand
	// accumulates.
	loaded := make(map[string]domain.InventoryItem)
	demand := make(map[string]int)
	for _, line := range params.Items {
		item, ok := loaded[line.ProductID]
		if !ok {
			var err error
			item, err = c.inventory.FindByProductID(ctx, line.ProductID)
			if err != nil {
				return PlaceOrderResult{}, err
			}
			loaded[line.ProductID] = item
		}
		demand[line.ProductID] += line.Quantity
		if demand[line.ProductID] > item.QuantityAvailable() {
			return PlaceOrderResult{}, &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: demand[line.ProductID],
				Available: item.QuantityAvailable(),
			}
		}
	}

	// Reserve on the in-memory copies. This re-checks the invariant and
	// records the stock movement events.
	now := c.clk.Now()
	for productID, quantity := range demand {
		reserved, err := loaded[productID].Reserve(quantity, principal, now)
		if err != nil {
			return PlaceOrderResult{}, err
		}
		loaded[productID] = reserved
	}

	items, err := lineItemsFromParams(params.Items)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	address := domain.Address{
		Line1:      params.Shipping.Line1,
		City:       params.Shipping.City,
		PostalCode: params.Shipping.PostalCode,
		Country:    params.Shipping.Country,
	}

	order, err := domain.NewOrder(c.ids.NewID(), params.CustomerID, items, address, principal, now)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	for _, item := range loaded {
		c.inventory.Save(c.uow, item)
	}
	c.orders.Save(c.uow, order)

	return PlaceOrderResult{
		OrderID:     order.AggregateID(),
		Status:      string(order.Status()),
		TotalAmount: order.TotalAmount(),
	}, nil
}
