package prescriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/pagination"
)

type listQuery struct {
	customerID uuid.UUID
	limit      int
	cursor     *pagination.Cursor
}

// Repository exposes saved prescription persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a saved prescription repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new saved prescription row.
func (r *Repository) Create(ctx context.Context, row *models.SavedPrescription) (*models.SavedPrescription, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID returns one saved prescription.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SavedPrescription, error) {
	var row models.SavedPrescription
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns customer-scoped prescriptions using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.SavedPrescription, error) {
	query := r.db.WithContext(ctx).Model(&models.SavedPrescription{}).Where("customer_id = ?", opts.customerID)

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.SavedPrescription
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes one saved prescription.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SavedPrescription{}).Error
}
