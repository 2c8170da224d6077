package commands

import (
	"context"
	"time"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
	"example.com/storefront/services/orders/internal/validation"
)

// CreateSubscriptionParams are the inputs to starting a subscription.
type CreateSubscriptionParams struct {
	CustomerID      string            `json:"customer_id" validate:"required"`
	IntervalDays    int               `json:"interval_days" validate:"required,gte=1"`
	FirstDeliveryAt time.Time         `json:"first_delivery_at" validate:"required"`
	Items           []OrderLineParams `json:"items" validate:"required,min=1,dive"`
	Shipping        AddressParams     `json:"shipping" validate:"required"`
}

// CreateSubscriptionResult reports the new subscription.
type CreateSubscriptionResult struct {
	SubscriptionID string    `json:"subscription_id"`
	Status         string    `json:"status"`
	NextDeliveryAt time.Time `json:"next_delivery_at"`
}

// CreateSubscription starts a recurring order for a customer.
type CreateSubscription struct {
	base
	subscriptions SubscriptionStore
}

// NewCreateSubscription creates the command.
func NewCreateSubscription(u uow.UnitOfWork, subscriptions SubscriptionStore, clk clock.Clock, ids clock.IDGenerator) *CreateSubscription {
	return &CreateSubscription{
		base:          newBase("CreateSubscription", u, clk, ids),
		subscriptions: subscriptions,
	}
}

// Execute creates the subscription and registers it for commit.
func (c *CreateSubscription) Execute(ctx context.Context, principal domain.Principal, params CreateSubscriptionParams) (CreateSubscriptionResult, error) {
	if err := validation.Struct(params); err != nil {
		return CreateSubscriptionResult{}, err
	}

	items, err := lineItemsFromParams(params.Items)
	if err != nil {
		return CreateSubscriptionResult{}, err
	}

	address, err := domain.NewAddress(
		params.Shipping.Line1,
		params.Shipping.City,
		params.Shipping.PostalCode,
		params.Shipping.Country,
	)
	if err != nil {
		return CreateSubscriptionResult{}, err
	}

	sub, err := domain.NewSubscription(
		c.ids.NewID(),
		params.CustomerID,
		params.IntervalDays,
		params.FirstDeliveryAt,
		items,
		address,
		principal,
		c.clk.Now(),
	)
	if err != nil {
		return CreateSubscriptionResult{}, err
	}

	c.subscriptions.Save(c.uow, sub)

	return CreateSubscriptionResult{
		SubscriptionID: sub.AggregateID(),
		Status:         string(sub.Status()),
		NextDeliveryAt: sub.NextDeliveryAt(),
	}, nil
}

// SubscriptionLifecycleParams identify the subscription to act on.
type SubscriptionLifecycleParams struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

// SubscriptionLifecycleResult reports the state after the change.
type SubscriptionLifecycleResult struct {
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
}

// ChangeSubscriptionStatus pauses, resumes, or cancels a subscription
// depending on the mutation it was constructed with.
type ChangeSubscriptionStatus struct {
	base
	subscriptions SubscriptionStore
	apply         func(domain.Subscription, domain.Principal, time.Time) (domain.Subscription, error)
}

// NewPauseSubscription suspends deliveries for a subscription.
func NewPauseSubscription(u uow.UnitOfWork, subscriptions SubscriptionStore, clk clock.Clock, ids clock.IDGenerator) *ChangeSubscriptionStatus {
	return &ChangeSubscriptionStatus{
		base:          newBase("PauseSubscription", u, clk, ids),
		subscriptions: subscriptions,
		apply:         domain.Subscription.Pause,
	}
}

// NewResumeSubscription reactivates a paused subscription.
func NewResumeSubscription(u uow.UnitOfWork, subscriptions SubscriptionStore, clk clock.Clock, ids clock.IDGenerator) *ChangeSubscriptionStatus {
	return &ChangeSubscriptionStatus{
		base:          newBase("ResumeSubscription", u, clk, ids),
		subscriptions: subscriptions,
		apply:         domain.Subscription.Resume,
	}
}

// NewCancelSubscription terminates a subscription for good.
func NewCancelSubscription(u uow.UnitOfWork, subscriptions SubscriptionStore, clk clock.Clock, ids clock.IDGenerator) *ChangeSubscriptionStatus {
	return &ChangeSubscriptionStatus{
		base:          newBase("CancelSubscription", u, clk, ids),
		subscriptions: subscriptions,
		apply:         domain.Subscription.Cancel,
	}
}

// Execute applies the lifecycle change and registers the subscription for commit.
func (c *ChangeSubscriptionStatus) Execute(ctx context.Context, principal domain.Principal, params SubscriptionLifecycleParams) (SubscriptionLifecycleResult, error) {
	if err := validation.Struct(params); err != nil {
		return SubscriptionLifecycleResult{}, err
	}

	sub, err := c.subscriptions.FindByID(ctx, params.SubscriptionID)
	if err != nil {
		return SubscriptionLifecycleResult{}, err
	}

	changed, err := c.apply(sub, principal, c.clk.Now())
	if err != nil {
		return SubscriptionLifecycleResult{}, err
	}

	c.subscriptions.Save(c.uow, changed)

	return SubscriptionLifecycleResult{
		SubscriptionID: changed.AggregateID(),
		Status:         string(changed.Status()),
	}, nil
}

func lineItemsFromParams(lines []OrderLineParams) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(lines))
	for _, line := range lines {
		price, err := domain.NewMoney(line.UnitPriceCents, line.Currency)
		if err != nil {
			return nil, err
		}
		item, err := domain.NewLineItem(line.ProductID, line.Name, line.Quantity, price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
