package domain

import "time"

// SubscriptionStatus is the subscription lifecycle state.
type SubscriptionStatus string

// Subscription statuses. Cancellation is terminal and one-way.
const (
	SubscriptionActive          SubscriptionStatus = "ACTIVE"
	SubscriptionPausedStatus    SubscriptionStatus = "PAUSED"
	SubscriptionCancelledStatus SubscriptionStatus = "CANCELLED"
)

// Subscription is a recurring order: a fixed set of line items delivered to
// a fixed address every intervalDays.
type Subscription struct {
	root
	customerID     string
	intervalDays   int
	status         SubscriptionStatus
	nextDeliveryAt time.Time
	items          []LineItem
	shipping       Address
}

// NewSubscription creates an active subscription with its first delivery due
// at firstDeliveryAt.
func NewSubscription(id, customerID string, intervalDays int, firstDeliveryAt time.Time, items []LineItem, shipping Address, by Principal, at time.Time) (Subscription, error) {
	switch {
	case id == "":
		return Subscription{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	case customerID == "":
		return Subscription{}, &ValidationError{Field: "customer_id", Reason: "must not be empty"}
	case intervalDays < 1:
		return Subscription{}, &ValidationError{Field: "interval_days", Reason: "must be at least 1"}
	case len(items) == 0:
		return Subscription{}, &ValidationError{Field: "items", Reason: "must contain at least one line item"}
	}
	if _, err := NewAddress(shipping.Line1, shipping.City, shipping.PostalCode, shipping.Country); err != nil {
		return Subscription{}, err
	}
	for _, item := range items {
		if _, err := NewLineItem(item.ProductID, item.Name, item.Quantity, item.UnitPrice); err != nil {
			return Subscription{}, err
		}
	}

	sub := Subscription{
		root:           newRoot(id, AggregateSubscription),
		customerID:     customerID,
		intervalDays:   intervalDays,
		status:         SubscriptionActive,
		nextDeliveryAt: firstDeliveryAt,
		items:          copyLineItems(items),
		shipping:       shipping,
	}
	sub.root = sub.record(Event{
		Type:        SubscriptionCreated,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: SubscriptionCreatedPayload{
			CustomerID:     customerID,
			IntervalDays:   intervalDays,
			NextDeliveryAt: firstDeliveryAt,
		},
	})
	return sub, nil
}

// RehydrateSubscription rebuilds a subscription from storage without recording events.
func RehydrateSubscription(id string, version int64, customerID string, intervalDays int, status SubscriptionStatus, nextDeliveryAt time.Time, items []LineItem, shipping Address) Subscription {
	return Subscription{
		root:           rehydratedRoot(id, AggregateSubscription, version),
		customerID:     customerID,
		intervalDays:   intervalDays,
		status:         status,
		nextDeliveryAt: nextDeliveryAt,
		items:          copyLineItems(items),
		shipping:       shipping,
	}
}

// CustomerID returns the subscribing customer.
func (s Subscription) CustomerID() string { return s.customerID }

// IntervalDays returns the delivery interval.
func (s Subscription) IntervalDays() int { return s.intervalDays }

// Status returns the current lifecycle state.
func (s Subscription) Status() SubscriptionStatus { return s.status }

// NextDeliveryAt returns the next due time.
func (s Subscription) NextDeliveryAt() time.Time { return s.nextDeliveryAt }

// Items returns a copy of the line items.
func (s Subscription) Items() []LineItem { return copyLineItems(s.items) }

// ShippingAddress returns the delivery address.
func (s Subscription) ShippingAddress() Address { return s.shipping }

// IsDue reports whether an active subscription is due at the given time.
func (s Subscription) IsDue(now time.Time) bool {
	return s.status == SubscriptionActive && !s.nextDeliveryAt.After(now)
}

// Pause suspends deliveries. Only active subscriptions can be paused.
func (s Subscription) Pause(by Principal, at time.Time) (Subscription, error) {
	return s.transitionTo(SubscriptionPausedStatus, SubscriptionPaused, by, at)
}

// Resume reactivates a paused subscription.
func (s Subscription) Resume(by Principal, at time.Time) (Subscription, error) {
	return s.transitionTo(SubscriptionActive, SubscriptionResumed, by, at)
}

// Cancel terminates the subscription. Cancellation is irreversible.
func (s Subscription) Cancel(by Principal, at time.Time) (Subscription, error) {
	return s.transitionTo(SubscriptionCancelledStatus, SubscriptionCancelled, by, at)
}

func (s Subscription) transitionTo(next SubscriptionStatus, eventType string, by Principal, at time.Time) (Subscription, error) {
	if !s.canTransitionTo(next) {
		return Subscription{}, &TransitionError{
			AggregateType: AggregateSubscription,
			From:          string(s.status),
			To:            string(next),
		}
	}

	updated := s
	updated.items = copyLineItems(s.items)
	updated.status = next
	updated.root = updated.record(Event{
		Type:        eventType,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: SubscriptionStatusPayload{
			From: string(s.status),
			To:   string(next),
		},
	})
	return updated, nil
}

func (s Subscription) canTransitionTo(next SubscriptionStatus) bool {
	switch s.status {
	case SubscriptionActive:
		return next == SubscriptionPausedStatus || next == SubscriptionCancelledStatus
	case SubscriptionPausedStatus:
		return next == SubscriptionActive || next == SubscriptionCancelledStatus
	default:
		return false
	}
}

// Advance pushes the next delivery forward by the interval after an order
// was placed for the current due date. Only active subscriptions advance.
func (s Subscription) Advance(orderID string, by Principal, at time.Time) (Subscription, error) {
	if s.status != SubscriptionActive {
		return Subscription{}, &TransitionError{
			AggregateType: AggregateSubscription,
			From:          string(s.status),
			To:            string(SubscriptionActive),
		}
	}

	updated := s
	updated.items = copyLineItems(s.items)
	updated.nextDeliveryAt = s.nextDeliveryAt.AddDate(0, 0, s.intervalDays)
	updated.root = updated.record(Event{
		Type:        SubscriptionAdvanced,
		PrincipalID: by.ID,
		OccurredAt:  at,
		Payload: SubscriptionAdvancedPayload{
			OrderID:            orderID,
			PreviousDeliveryAt: s.nextDeliveryAt,
			NextDeliveryAt:     updated.nextDeliveryAt,
		},
	})
	return updated, nil
}
