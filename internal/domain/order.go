package domain

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

// Order statuses.
const (
	OrderPending         OrderStatus = "PENDING"
	OrderConfirmed       OrderStatus = "CONFIRMED"
	OrderProcessing      OrderStatus = "PROCESSING"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderCancelledStatus OrderStatus = "CANCELLED"
)

// orderTransitions is the full set of allowed status edges. Anything not in
// this table is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelledStatus},
	OrderConfirmed:  {OrderProcessing, OrderCancelledStatus},
	OrderProcessing: {OrderShipped, OrderCancelledStatus},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionTo reports whether the edge from s to next exists.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer order. Line items and the total amount are fixed at
// placement time; only the status changes afterwards.
type Order struct {
	root
	customerID string
	items      []LineItem
	status     OrderStatus
	shipping   Address
	total      Money
	placedAt   time.Time
}

// NewOrder places an order. At least one line item is required and the total
// is the sum of the line totals, never recomputed later.
func NewOrder(id, customerID string, items []LineItem, shipping Address, by Principal, at time.Time) (Order, error) {
	switch {
	case id == "":
		return Order{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	case customerID == "":
		return Order{}, &ValidationError{Field: "customer_id", Reason: "must not be empty"}
	case len(items) == 0:
		return Order{}, &ValidationError{Field: "items", Reason: "must contain at least one line item"}
	}
	if _, err := NewAddress(shipping.Line1, shipping.City, shipping.PostalCode, shipping.Country); err != nil {
		return Order{}, err
	}
	for _, item := range items {
		if _, err := NewLineItem(item.ProductID, item.Name, item.Quantity, item.UnitPrice); err != nil {
			return Order{}, err
		}
	}

	total, err := sumLineItems(items)
	if err != nil {
		return Order{}, err
	}

	order := Order{
		root:       newRoot(id, AggregateOrder),
		customerID: customerID,
		items:      copyLineItems(items),
		status:     OrderPending,
		shipping:   shipping,
		total:      total,
		placedAt:   at,
	}
	order.root = order.record(Event{
		Type:        OrderPlaced,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: OrderPlacedPayload{
			CustomerID:  customerID,
			Items:       copyLineItems(items),
			TotalAmount: total,
			Status:      string(OrderPending),
		},
	})
	return order, nil
}

// RehydrateOrder rebuilds an order from storage without recording events.
func RehydrateOrder(id string, version int64, customerID string, items []LineItem, status OrderStatus, shipping Address, total Money, placedAt time.Time) Order {
	return Order{
		root:       rehydratedRoot(id, AggregateOrder, version),
		customerID: customerID,
		items:      copyLineItems(items),
		status:     status,
		shipping:   shipping,
		total:      total,
		placedAt:   placedAt,
	}
}

// CustomerID returns the ordering customer.
func (o Order) CustomerID() string { return o.customerID }

// Items returns a copy of the line items.
func (o Order) Items() []LineItem { return copyLineItems(o.items) }

// Status returns the current lifecycle state.
func (o Order) Status() OrderStatus { return o.status }

// ShippingAddress returns the delivery address.
func (o Order) ShippingAddress() Address { return o.shipping }

// TotalAmount returns the amount fixed at placement time.
func (o Order) TotalAmount() Money { return o.total }

// PlacedAt returns the placement time.
func (o Order) PlacedAt() time.Time { return o.placedAt }

// TransitionTo moves the order along one status edge. Edges outside the
// transition table fail with a TransitionError and leave the order unchanged.
func (o Order) TransitionTo(next OrderStatus, by Principal, at time.Time) (Order, error) {
	if !o.status.CanTransitionTo(next) {
		return Order{}, &TransitionError{
			AggregateType: AggregateOrder,
			From:          string(o.status),
			To:            string(next),
		}
	}

	eventType := OrderStatusChanged
	if next == OrderCancelledStatus {
		eventType = OrderCancelled
	}

	updated := o
	updated.items = copyLineItems(o.items)
	updated.status = next
	updated.root = updated.record(Event{
		Type:        eventType,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: OrderStatusChangedPayload{
			From: string(o.status),
			To:   string(next),
		},
	})
	return updated, nil
}
