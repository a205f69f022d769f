package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// LensMaterial is a lens material catalog row. Reference data: the engine
// only ever reads it through an immutable snapshot.
type LensMaterial struct {
	ID             string          `gorm:"column:id;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	RefractiveIdx  string          `gorm:"column:refractive_idx;not null"`
	ThinnessFactor decimal.Decimal `gorm:"column:thinness_factor;type:numeric(4,2);not null;default:1"`
	Polycarbonate  bool            `gorm:"column:polycarbonate;not null;default:false"`
	BuiltInUV      bool            `gorm:"column:built_in_uv;not null;default:false"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Currency       enums.Currency  `gorm:"column:currency;not null;default:'MXN'"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (LensMaterial) TableName() string {
	return "lens_materials"
}
