package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/models"
	"example.com/storefront/services/orders/internal/uow"
)

// SubscriptionRepository provides access to subscription aggregates.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// SubscriptionFilter narrows subscription listings.
type SubscriptionFilter struct {
	CustomerID string
	Status     domain.SubscriptionStatus
	Limit      int
	Offset     int
}

// FindByID loads a subscription by aggregate id.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (domain.Subscription, error) {
	var rec models.Subscription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, &domain.NotFoundError{AggregateType: domain.AggregateSubscription, ID: id}
		}
		return domain.Subscription{}, errors.Wrap(err, "failed to load subscription")
	}
	return subscriptionFromRecord(rec)
}

// FindByCustomerID lists a customer's subscriptions.
func (r *SubscriptionRepository) FindByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	return r.FindAll(ctx, SubscriptionFilter{CustomerID: customerID})
}

// FindDue lists active subscriptions whose next delivery is due at or before
// the given time, oldest first.
func (r *SubscriptionRepository) FindDue(ctx context.Context, before time.Time) ([]domain.Subscription, error) {
	var recs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_delivery_at <= ?", string(domain.SubscriptionActive), before).
		Order("next_delivery_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due subscriptions")
	}
	return subscriptionsFromRecords(recs)
}

// FindAll lists subscriptions matching the filter.
func (r *SubscriptionRepository) FindAll(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error) {
	var recs []models.Subscription
	err := r.subscriptionQuery(ctx, filter).
		Order("next_delivery_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subscriptions")
	}
	return subscriptionsFromRecords(recs)
}

// Count counts subscriptions matching the filter.
func (r *SubscriptionRepository) Count(ctx context.Context, filter SubscriptionFilter) (int64, error) {
	var count int64
	filter.Limit = 0
	filter.Offset = 0
	err := r.subscriptionQuery(ctx, filter).
		Model(&models.Subscription{}).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count subscriptions")
	}
	return count, nil
}

func (r *SubscriptionRepository) subscriptionQuery(ctx context.Context, filter SubscriptionFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

// Save registers the subscription with the active unit of work. No I/O
// happens here.
func (r *SubscriptionRepository) Save(u uow.UnitOfWork, sub domain.Subscription) {
	u.Track(sub, r)
}

// SaveWithTx persists the subscription inside an open transaction under the
// optimistic concurrency contract.
func (r *SubscriptionRepository) SaveWithTx(ctx context.Context, tx *gorm.DB, aggregate domain.Aggregate) (domain.Aggregate, error) {
	sub, ok := aggregate.(domain.Subscription)
	if !ok {
		return nil, errors.Errorf("subscription repository cannot save aggregate of type %T", aggregate)
	}

	items, err := json.Marshal(sub.Items())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal subscription items")
	}
	address, err := json.Marshal(sub.ShippingAddress())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal shipping address")
	}

	rec := models.Subscription{
		ID:              sub.AggregateID(),
		CustomerID:      sub.CustomerID(),
		Status:          string(sub.Status()),
		IntervalDays:    sub.IntervalDays(),
		NextDeliveryAt:  sub.NextDeliveryAt(),
		Items:           items,
		ShippingAddress: address,
	}

	if sub.AggregateVersion() == domain.VersionNew {
		rec.Version = 0
		if err := tx.Create(&rec).Error; err != nil {
			return nil, errors.Wrap(err, "failed to insert subscription")
		}
		return subscriptionFromRecord(rec)
	}

	nextVersion := sub.AggregateVersion() + 1
	res := tx.Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.AggregateID(), sub.AggregateVersion()).
		Updates(map[string]interface{}{
			"status":           rec.Status,
			"next_delivery_at": rec.NextDeliveryAt,
			"version":          nextVersion,
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to update subscription")
	}
	if res.RowsAffected == 0 {
		return nil, &domain.ConcurrentModificationError{AggregateID: sub.AggregateID()}
	}

	rec.Version = nextVersion
	return subscriptionFromRecord(rec)
}

func subscriptionsFromRecords(recs []models.Subscription) ([]domain.Subscription, error) {
	subs := make([]domain.Subscription, 0, len(recs))
	for _, rec := range recs {
		sub, err := subscriptionFromRecord(rec)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func subscriptionFromRecord(rec models.Subscription) (domain.Subscription, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(rec.Items, &items); err != nil {
		return domain.Subscription{}, errors.Wrapf(err, "subscription %s has unreadable items", rec.ID)
	}
	var address domain.Address
	if err := json.Unmarshal(rec.ShippingAddress, &address); err != nil {
		return domain.Subscription{}, errors.Wrapf(err, "subscription %s has an unreadable address", rec.ID)
	}

	return domain.RehydrateSubscription(
		rec.ID,
		rec.Version,
		rec.CustomerID,
		rec.IntervalDays,
		domain.SubscriptionStatus(rec.Status),
		rec.NextDeliveryAt,
		items,
		address,
	), nil
}
