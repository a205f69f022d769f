package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/db/models"
)

// Repository exposes lens catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActiveMaterials returns active materials ordered by refractive index.
func (r *Repository) ListActiveMaterials(ctx context.Context) ([]models.LensMaterial, error) {
	var rows []models.LensMaterial
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("refractive_idx ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveTreatments returns active treatments ordered by category then id.
func (r *Repository) ListActiveTreatments(ctx context.Context) ([]models.LensTreatment, error) {
	var rows []models.LensTreatment
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveUsageOptions returns active usage options.
func (r *Repository) ListActiveUsageOptions(ctx context.Context) ([]models.LensUsageOption, error) {
	var rows []models.LensUsageOption
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("usage_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMaterial returns one material by id regardless of active state.
func (r *Repository) FindMaterial(ctx context.Context, id string) (*models.LensMaterial, error) {
	var row models.LensMaterial
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
