package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/models"
	"example.com/storefront/services/orders/internal/uow"
)

// InventoryRepository provides access to inventory aggregates.
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// InventoryFilter narrows inventory listings.
type InventoryFilter struct {
	NeedsReorder bool
	Limit        int
	Offset       int
}

// FindByID loads an inventory item by aggregate id.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (domain.InventoryItem, error) {
	var rec models.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return domain.InventoryItem{}, translateInventoryErr(err, id)
	}
	return inventoryFromRecord(rec), nil
}

// FindByProductID loads the inventory item tracking a product.
func (r *InventoryRepository) FindByProductID(ctx context.Context, productID string) (domain.InventoryItem, error) {
	var rec models.InventoryItem
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&rec).Error
	if err != nil {
		return domain.InventoryItem{}, translateInventoryErr(err, productID)
	}
	return inventoryFromRecord(rec), nil
}

// FindBySKU loads an inventory item by stock keeping unit.
func (r *InventoryRepository) FindBySKU(ctx context.Context, sku domain.SKU) (domain.InventoryItem, error) {
	var rec models.InventoryItem
	err := r.db.WithContext(ctx).Where("sku = ?", string(sku)).First(&rec).Error
	if err != nil {
		return domain.InventoryItem{}, translateInventoryErr(err, string(sku))
	}
	return inventoryFromRecord(rec), nil
}

// FindAll lists inventory items matching the filter.
func (r *InventoryRepository) FindAll(ctx context.Context, filter InventoryFilter) ([]domain.InventoryItem, error) {
	var recs []models.InventoryItem
	err := r.inventoryQuery(ctx, filter).
		Order("sku ASC").
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory items")
	}

	items := make([]domain.InventoryItem, len(recs))
	for i, rec := range recs {
		items[i] = inventoryFromRecord(rec)
	}
	return items, nil
}

// Count counts inventory items matching the filter.
func (r *InventoryRepository) Count(ctx context.Context, filter InventoryFilter) (int64, error) {
	var count int64
	filter.Limit = 0
	filter.Offset = 0
	err := r.inventoryQuery(ctx, filter).
		Model(&models.InventoryItem{}).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count inventory items")
	}
	return count, nil
}

func (r *InventoryRepository) inventoryQuery(ctx context.Context, filter InventoryFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if filter.NeedsReorder {
		q = q.Where("quantity_on_hand - quantity_reserved <= reorder_point")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

// Save registers the item with the active unit of work. No I/O happens here.
func (r *InventoryRepository) Save(u uow.UnitOfWork, item domain.InventoryItem) {
	u.Track(item, r)
}

// SaveWithTx persists the item inside an open transaction under the
// optimistic concurrency contract.
func (r *InventoryRepository) SaveWithTx(ctx context.Context, tx *gorm.DB, aggregate domain.Aggregate) (domain.Aggregate, error) {
	item, ok := aggregate.(domain.InventoryItem)
	if !ok {
		return nil, errors.Errorf("inventory repository cannot save aggregate of type %T", aggregate)
	}

	rec := models.InventoryItem{
		ID:               item.AggregateID(),
		ProductID:        item.ProductID(),
		SKU:              string(item.SKU()),
		QuantityOnHand:   item.QuantityOnHand(),
		QuantityReserved: item.QuantityReserved(),
		ReorderPoint:     item.ReorderPoint(),
	}

	if item.AggregateVersion() == domain.VersionNew {
		rec.Version = 0
		if err := tx.Create(&rec).Error; err != nil {
			return nil, errors.Wrap(err, "failed to insert inventory item")
		}
		return inventoryFromRecord(rec), nil
	}

	nextVersion := item.AggregateVersion() + 1
	res := tx.Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", item.AggregateID(), item.AggregateVersion()).
		Updates(map[string]interface{}{
			"quantity_on_hand":  rec.QuantityOnHand,
			"quantity_reserved": rec.QuantityReserved,
			"reorder_point":     rec.ReorderPoint,
			"version":           nextVersion,
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to update inventory item")
	}
	if res.RowsAffected == 0 {
		return nil, &domain.ConcurrentModificationError{AggregateID: item.AggregateID()}
	}

	rec.Version = nextVersion
	return inventoryFromRecord(rec), nil
}

func inventoryFromRecord(rec models.InventoryItem) domain.InventoryItem {
	return domain.RehydrateInventoryItem(
		rec.ID,
		rec.Version,
		rec.ProductID,
		domain.SKU(rec.SKU),
		rec.QuantityOnHand,
		rec.QuantityReserved,
		rec.ReorderPoint,
	)
}

func translateInventoryErr(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.NotFoundError{AggregateType: domain.AggregateInventory, ID: id}
	}
	return errors.Wrap(err, "failed to load inventory item")
}
