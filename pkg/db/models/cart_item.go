package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CartItem is one completed lens configuration added to a cart. The
// selections and the pricing breakdown are copied at add time so later
// catalog edits never change what the customer agreed to pay.
type CartItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ConfigurationID uuid.UUID       `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex"`
	UsageType       string          `gorm:"column:usage_type;not null"`
	MaterialID      string          `gorm:"column:material_id;not null"`
	TreatmentIDs    pq.StringArray  `gorm:"column:treatment_ids;type:text[]"`
	Pricing         json.RawMessage `gorm:"column:pricing;type:jsonb;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity        int             `gorm:"column:quantity;not null;default:1"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (CartItem) TableName() string {
	return "cart_items"
}
