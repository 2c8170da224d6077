package domain

import "time"

// Event type constants, namespaced by aggregate.
const (
	// Order events
	OrderPlaced        = "Order.Placed"
	OrderStatusChanged = "Order.StatusChanged"
	OrderCancelled     = "Order.Cancelled"

	// Inventory events
	InventoryCreated     = "Inventory.Created"
	InventoryReserved    = "Inventory.StockReserved"
	InventoryReleased    = "Inventory.StockReleased"
	InventoryReplenished = "Inventory.StockReplenished"

	// Subscription events
	SubscriptionCreated   = "Subscription.Created"
	SubscriptionPaused    = "Subscription.Paused"
	SubscriptionResumed   = "Subscription.Resumed"
	SubscriptionCancelled = "Subscription.Cancelled"
	SubscriptionAdvanced  = "Subscription.Advanced"
)

// Aggregate type names used in events and persistence.
const (
	AggregateOrder        = "order"
	AggregateInventory    = "inventory_item"
	AggregateSubscription = "subscription"
)

// Event is an immutable fact recorded by an aggregate mutation.
// The EventID is assigned by the unit of work when the event is staged.
type Event struct {
	EventID       string      `json:"event_id"`
	AggregateID   string      `json:"aggregate_id"`
	AggregateType string      `json:"aggregate_type"`
	Type          string      `json:"type"`
	PrincipalID   string      `json:"principal_id"`
	Payload       interface{} `json:"payload"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Order event payloads

// OrderPlacedPayload describes a newly placed order.
type OrderPlacedPayload struct {
	CustomerID  string     `json:"customer_id"`
	Items       []LineItem `json:"items"`
	TotalAmount Money      `json:"total_amount"`
	Status      string     `json:"status"`
}

// OrderStatusChangedPayload records a status edge that was followed.
type OrderStatusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Inventory event payloads

// InventoryCreatedPayload describes a newly tracked product.
type InventoryCreatedPayload struct {
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	ReorderPoint   int    `json:"reorder_point"`
}

// StockMovementPayload records a reservation, release or replenishment
// with the before and after values of the affected counter.
type StockMovementPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
}

// Subscription event payloads

// SubscriptionCreatedPayload describes a new recurring order.
type SubscriptionCreatedPayload struct {
	CustomerID     string    `json:"customer_id"`
	IntervalDays   int       `json:"interval_days"`
	NextDeliveryAt time.Time `json:"next_delivery_at"`
}

// SubscriptionStatusPayload records a subscription status change.
type SubscriptionStatusPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SubscriptionAdvancedPayload records a recurrence advancement.
type SubscriptionAdvancedPayload struct {
	OrderID            string    `json:"order_id"`
	PreviousDeliveryAt time.Time `json:"previous_delivery_at"`
	NextDeliveryAt     time.Time `json:"next_delivery_at"`
}
