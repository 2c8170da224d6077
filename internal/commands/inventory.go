package commands

import (
	"context"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
	"example.com/storefront/services/orders/internal/validation"
)

// CreateInventoryItemParams start stock tracking for a product.
type CreateInventoryItemParams struct {
	ProductID      string `json:"product_id" validate:"required"`
	SKU            string `json:"sku" validate:"required"`
	QuantityOnHand int    `json:"quantity_on_hand" validate:"gte=0"`
	ReorderPoint   int    `json:"reorder_point" validate:"gte=0"`
}

// CreateInventoryItemResult reports the new item.
type CreateInventoryItemResult struct {
	InventoryItemID string `json:"inventory_item_id"`
	ProductID       string `json:"product_id"`
}

// CreateInventoryItem starts tracking stock for a product. One item exists
// per product; a duplicate create fails on the unique product constraint at
// commit time.
type CreateInventoryItem struct {
	base
	inventory InventoryStore
}

// NewCreateInventoryItem creates the command.
func NewCreateInventoryItem(u uow.UnitOfWork, inventory InventoryStore, clk clock.Clock, ids clock.IDGenerator) *CreateInventoryItem {
	return &CreateInventoryItem{
		base:      newBase("CreateInventoryItem", u, clk, ids),
		inventory: inventory,
	}
}

// Execute creates the item and registers it for commit.
func (c *CreateInventoryItem) Execute(ctx context.Context, principal domain.Principal, params CreateInventoryItemParams) (CreateInventoryItemResult, error) {
	if err := validation.Struct(params); err != nil {
		return CreateInventoryItemResult{}, err
	}

	sku, err := domain.NewSKU(params.SKU)
	if err != nil {
		return CreateInventoryItemResult{}, err
	}

	item, err := domain.NewInventoryItem(
		c.ids.NewID(),
		params.ProductID,
		sku,
		params.QuantityOnHand,
		params.ReorderPoint,
		principal,
		c.clk.Now(),
	)
	if err != nil {
		return CreateInventoryItemResult{}, err
	}

	c.inventory.Save(c.uow, item)

	return CreateInventoryItemResult{
		InventoryItemID: item.AggregateID(),
		ProductID:       item.ProductID(),
	}, nil
}

// ReplenishInventoryParams add physical stock for a product.
type ReplenishInventoryParams struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// ReplenishInventoryResult reports the new stock level.
type ReplenishInventoryResult struct {
	ProductID         string `json:"product_id"`
	QuantityOnHand    int    `json:"quantity_on_hand"`
	QuantityAvailable int    `json:"quantity_available"`
}

// ReplenishInventory adds received stock to an item.
type ReplenishInventory struct {
	base
	inventory InventoryStore
}

// NewReplenishInventory creates the command.
func NewReplenishInventory(u uow.UnitOfWork, inventory InventoryStore, clk clock.Clock, ids clock.IDGenerator) *ReplenishInventory {
	return &ReplenishInventory{
		base:      newBase("ReplenishInventory", u, clk, ids),
		inventory: inventory,
	}
}

// Execute replenishes the item and registers it for commit.
func (c *ReplenishInventory) Execute(ctx context.Context, principal domain.Principal, params ReplenishInventoryParams) (ReplenishInventoryResult, error) {
	if err := validation.Struct(params); err != nil {
		return ReplenishInventoryResult{}, err
	}

	item, err := c.inventory.FindByProductID(ctx, params.ProductID)
	if err != nil {
		return ReplenishInventoryResult{}, err
	}

	replenished, err := item.Replenish(params.Quantity, principal, c.clk.Now())
	if err != nil {
		return ReplenishInventoryResult{}, err
	}

	c.inventory.Save(c.uow, replenished)

	return ReplenishInventoryResult{
		ProductID:         replenished.ProductID(),
		QuantityOnHand:    replenished.QuantityOnHand(),
		QuantityAvailable: replenished.QuantityAvailable(),
	}, nil
}
