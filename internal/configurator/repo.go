package configurator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/db/models"
)

// Repository exposes lens configuration persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a configuration repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new configuration row.
func (r *Repository) Create(ctx context.Context, record *models.LensConfiguration) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID returns one configuration row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LensConfiguration, error) {
	var record models.LensConfiguration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Save writes the full row back. The wizard computes every transition on a
// copy, so a save is always the whole aggregate, never a partial patch.
func (r *Repository) Save(ctx context.Context, record *models.LensConfiguration) error {
	return r.db.WithContext(ctx).
		Model(&models.LensConfiguration{}).
		Where("id = ?", record.ID).
		Select("step", "usage_type", "prescription_source", "saved_prescription_id",
			"prescription", "material_id", "treatment_ids", "pricing", "is_complete").
		Updates(record).Error
}

// DeleteExpiredBefore removes incomplete configurations whose expiry passed.
func (r *Repository) DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	result := conn.WithContext(ctx).
		Where("expires_at < ? AND is_complete = ?", cutoff, false).
		Delete(&models.LensConfiguration{})
	return result.RowsAffected, result.Error
}
