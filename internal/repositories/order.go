package repositories

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/models"
	"example.com/storefront/services/orders/internal/uow"
)

// OrderRepository provides access to order aggregates.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	CustomerID string
	Status     domain.OrderStatus
	Limit      int
	Offset     int
}

// FindByID loads an order by aggregate id.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	var rec models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, &domain.NotFoundError{AggregateType: domain.AggregateOrder, ID: id}
		}
		return domain.Order{}, errors.Wrap(err, "failed to load order")
	}
	return orderFromRecord(rec)
}

// FindByCustomerID lists a customer's orders, newest first.
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.FindAll(ctx, OrderFilter{CustomerID: customerID})
}

// FindAll lists orders matching the filter, newest first.
func (r *OrderRepository) FindAll(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	var recs []models.Order
	err := r.orderQuery(ctx, filter).
		Order("placed_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		order, err := orderFromRecord(rec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// Count counts orders matching the filter.
func (r *OrderRepository) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	var count int64
	filter.Limit = 0
	filter.Offset = 0
	err := r.orderQuery(ctx, filter).
		Model(&models.Order{}).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

func (r *OrderRepository) orderQuery(ctx context.Context, filter OrderFilter) *gorm.DB {
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

// Save registers the order with the active unit of work. No I/O happens here.
func (r *OrderRepository) Save(u uow.UnitOfWork, order domain.Order) {
	u.Track(order, r)
}

// SaveWithTx persists the order inside an open transaction under the
// optimistic concurrency contract.
func (r *OrderRepository) SaveWithTx(ctx context.Context, tx *gorm.DB, aggregate domain.Aggregate) (domain.Aggregate, error) {
	order, ok := aggregate.(domain.Order)
	if !ok {
		return nil, errors.Errorf("order repository cannot save aggregate of type %T", aggregate)
	}

	items, err := json.Marshal(order.Items())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal order items")
	}
	address, err := json.Marshal(order.ShippingAddress())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal shipping address")
	}

	rec := models.Order{
		ID:              order.AggregateID(),
		CustomerID:      order.CustomerID(),
		Status:          string(order.Status()),
		Items:           items,
		ShippingAddress: address,
		TotalCents:      order.TotalAmount().Cents,
		Currency:        order.TotalAmount().Currency,
		PlacedAt:        order.PlacedAt(),
	}

	if order.AggregateVersion() == domain.VersionNew {
		rec.Version = 0
		if err := tx.Create(&rec).Error; err != nil {
			return nil, errors.Wrap(err, "failed to insert order")
		}
		return orderFromRecord(rec)
	}

	nextVersion := order.AggregateVersion() + 1
	res := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.AggregateID(), order.AggregateVersion()).
		Updates(map[string]interface{}{
			"status":  rec.Status,
			"version": nextVersion,
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to update order")
	}
	if res.RowsAffected == 0 {
		return nil, &domain.ConcurrentModificationError{AggregateID: order.AggregateID()}
	}

	rec.Version = nextVersion
	return orderFromRecord(rec)
}

func orderFromRecord(rec models.Order) (domain.Order, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(rec.Items, &items); err != nil {
		return domain.Order{}, errors.Wrapf(err, "order %s has unreadable items", rec.ID)
	}
	var address domain.Address
	if err := json.Unmarshal(rec.ShippingAddress, &address); err != nil {
		return domain.Order{}, errors.Wrapf(err, "order %s has an unreadable address", rec.ID)
	}

	return domain.RehydrateOrder(
		rec.ID,
		rec.Version,
		rec.CustomerID,
		items,
		domain.OrderStatus(rec.Status),
		address,
		domain.Money{Cents: rec.TotalCents, Currency: rec.Currency},
		rec.PlacedAt,
	), nil
}
