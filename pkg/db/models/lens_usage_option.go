package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// LensUsageOption is a usage type catalog row with its pricing modifier.
type LensUsageOption struct {
	UsageType            enums.LensUsageType `gorm:"column:usage_type;primaryKey"`
	RequiresPrescription bool                `gorm:"column:requires_prescription;not null;default:true"`
	RequiresAdd          bool                `gorm:"column:requires_add;not null;default:false"`
	PriceModifier        decimal.Decimal     `gorm:"column:price_modifier;type:numeric(12,2);not null;default:0"`
	Currency             enums.Currency      `gorm:"column:currency;not null;default:'MXN'"`
	IsActive             bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (LensUsageOption) TableName() string {
	return "lens_usage_options"
}
