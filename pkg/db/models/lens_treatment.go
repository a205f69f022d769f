package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// LensTreatment is a treatment catalog row. The array columns carry the
// compatibility constraints the resolver enforces: mutually incompatible
// treatment IDs, material gates, and usage types the treatment is
// excluded from.
type LensTreatment struct {
	ID                 string                  `gorm:"column:id;primaryKey"`
	Name               string                  `gorm:"column:name;not null"`
	Category           enums.TreatmentCategory `gorm:"column:category;not null"`
	Price              decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null"`
	Currency           enums.Currency          `gorm:"column:currency;not null;default:'MXN'"`
	IncompatibleWith   pq.StringArray          `gorm:"column:incompatible_with;type:text[]"`
	RequiresMaterials  pq.StringArray          `gorm:"column:requires_materials;type:text[]"`
	ExcludedUsageTypes pq.StringArray          `gorm:"column:excluded_usage_types;type:text[]"`
	IsActive           bool                    `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (LensTreatment) TableName() string {
	return "lens_treatments"
}
