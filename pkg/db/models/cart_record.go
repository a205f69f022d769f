package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// CartRecord is a customer cart. Totals are denormalized from the items
// and recomputed inside the same transaction that mutates them.
type CartRecord struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Status     enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	Currency   enums.Currency   `gorm:"column:currency;not null;default:'MXN'"`
	Subtotal   decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Total      decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Items []CartItem `gorm:"foreignKey:CartID;references:ID"`
}

// TableName overrides the default pluralization.
func (CartRecord) TableName() string {
	return "cart_records"
}
