package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
)

// Repository exposes cart persistence operations. Mutating methods accept a
// transaction handle so the service can group item writes with the totals
// update.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// FindActiveByCustomer returns the customer's active cart with items, or
// gorm.ErrRecordNotFound when none exists.
func (r *Repository) FindActiveByCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.conn(tx).WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND status = ?", customerID, enums.CartStatusActive).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart row.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, record *models.CartRecord) error {
	return r.conn(tx).WithContext(ctx).Create(record).Error
}

// CreateItem inserts a new cart item row.
func (r *Repository) CreateItem(ctx context.Context, tx *gorm.DB, item *models.CartItem) error {
	return r.conn(tx).WithContext(ctx).Create(item).Error
}

// FindItem returns one cart item.
func (r *Repository) FindItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.conn(tx).WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes one cart item.
func (r *Repository) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// ListItems returns all items of a cart.
func (r *Repository) ListItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.conn(tx).WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListConvertedBefore returns carts that converted before the cutoff.
// Retention only covers converted carts; active carts stay until the
// customer abandons or converts them.
func (r *Repository) ListConvertedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.CartRecord, error) {
	var records []models.CartRecord
	err := r.conn(tx).WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.CartStatusConverted, cutoff).
		Order("updated_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteCart removes a cart record together with its items.
func (r *Repository) DeleteCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", cartID).Delete(&models.CartRecord{}).Error
}

// UpdateTotals writes the denormalized cart amounts.
func (r *Repository) UpdateTotals(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, updates map[string]any) error {
	return r.conn(tx).WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(updates).Error
}
