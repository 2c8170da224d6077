package domain

import "time"

// InventoryItem tracks on-hand and reserved stock for one product.
// Reservations may never drive the reserved count negative or above the
// on-hand count.
type InventoryItem struct {
	root
	productID      string
	sku            SKU
	onHand         int
	reserved       int
	reorderPoint   int
}

// NewInventoryItem starts tracking stock for a product.
func NewInventoryItem(id, productID string, sku SKU, onHand, reorderPoint int, by Principal, at time.Time) (InventoryItem, error) {
	switch {
	case id == "":
		return InventoryItem{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	case productID == "":
		return InventoryItem{}, &ValidationError{Field: "product_id", Reason: "must not be empty"}
	case sku == "":
		return InventoryItem{}, &ValidationError{Field: "sku", Reason: "must not be empty"}
	case onHand < 0:
		return InventoryItem{}, &ValidationError{Field: "quantity_on_hand", Reason: "must not be negative"}
	case reorderPoint < 0:
		return InventoryItem{}, &ValidationError{Field: "reorder_point", Reason: "must not be negative"}
	}

	item := InventoryItem{
		root:         newRoot(id, AggregateInventory),
		productID:    productID,
		sku:          sku,
		onHand:       onHand,
		reorderPoint: reorderPoint,
	}
	item.root = item.record(Event{
		Type:        InventoryCreated,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: InventoryCreatedPayload{
			ProductID:      productID,
			SKU:            string(sku),
			QuantityOnHand: onHand,
			ReorderPoint:   reorderPoint,
		},
	})
	return item, nil
}

// RehydrateInventoryItem rebuilds an item from storage without recording events.
func RehydrateInventoryItem(id string, version int64, productID string, sku SKU, onHand, reserved, reorderPoint int) InventoryItem {
	return InventoryItem{
		root:         rehydratedRoot(id, AggregateInventory, version),
		productID:    productID,
		sku:          sku,
		onHand:       onHand,
		reserved:     reserved,
		reorderPoint: reorderPoint,
	}
}

// ProductID returns the tracked product.
func (i InventoryItem) ProductID() string { return i.productID }

// SKU returns the stock keeping unit.
func (i InventoryItem) SKU() SKU { return i.sku }

// QuantityOnHand returns the physical stock count.
func (i InventoryItem) QuantityOnHand() int { return i.onHand }

// QuantityReserved returns the stock held for open orders.
func (i InventoryItem) QuantityReserved() int { return i.reserved }

// ReorderPoint returns the replenishment threshold.
func (i InventoryItem) ReorderPoint() int { return i.reorderPoint }

// QuantityAvailable returns on-hand minus reserved stock.
func (i InventoryItem) QuantityAvailable() int { return i.onHand - i.reserved }

// NeedsReorder reports whether available stock has fallen to the reorder point.
func (i InventoryItem) NeedsReorder() bool { return i.QuantityAvailable() <= i.reorderPoint }

// Reserve holds quantity units for an order. The quantity must be positive
// and must not exceed availability.
func (i InventoryItem) Reserve(quantity int, by Principal, at time.Time) (InventoryItem, error) {
	if quantity <= 0 {
		return InventoryItem{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if quantity > i.QuantityAvailable() {
		return InventoryItem{}, &InsufficientStockError{
			ProductID: i.productID,
			Requested: quantity,
			Available: i.QuantityAvailable(),
		}
	}

	next := i
	next.reserved = i.reserved + quantity
	next.root = next.record(Event{
		Type:        InventoryReserved,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: StockMovementPayload{
			ProductID: i.productID,
			Quantity:  quantity,
			Before:    i.reserved,
			After:     next.reserved,
		},
	})
	return next, nil
}

// Release returns quantity units from the reserved pool, e.g. when an order
// is cancelled. Releasing more than is reserved is an invariant violation.
func (i InventoryItem) Release(quantity int, by Principal, at time.Time) (InventoryItem, error) {
	if quantity <= 0 {
		return InventoryItem{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if quantity > i.reserved {
		return InventoryItem{}, &ValidationError{Field: "quantity", Reason: "exceeds reserved stock"}
	}

	next := i
	next.reserved = i.reserved - quantity
	next.root = next.record(Event{
		Type:        InventoryReleased,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: StockMovementPayload{
			ProductID: i.productID,
			Quantity:  quantity,
			Before:    i.reserved,
			After:     next.reserved,
		},
	})
	return next, nil
}

// Replenish adds quantity units of physical stock.
func (i InventoryItem) Replenish(quantity int, by Principal, at time.Time) (InventoryItem, error) {
	if quantity <= 0 {
		return InventoryItem{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	next := i
	next.onHand = i.onHand + quantity
	next.root = next.record(Event{
		Type:        InventoryReplenished,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: StockMovementPayload{
			ProductID: i.productID,
			Quantity:  quantity,
			Before:    i.onHand,
			After:     next.onHand,
		},
	})
	return next, nil
}
