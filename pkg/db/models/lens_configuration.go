package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// LensConfiguration is a persisted wizard configuration. The stepwise
// selections that drive queries (step, expiry, customer) are columns; the
// validated prescription and the latest pricing breakdown are stored as
// jsonb payloads and only ever interpreted by the engine.
type LensConfiguration struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID          uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Step                enums.ConfigStep `gorm:"column:step;not null;default:'usage_type'"`
	UsageType           *string          `gorm:"column:usage_type"`
	PrescriptionSource  *string          `gorm:"column:prescription_source"`
	SavedPrescriptionID *uuid.UUID       `gorm:"column:saved_prescription_id;type:uuid"`
	Prescription        json.RawMessage  `gorm:"column:prescription;type:jsonb"`
	MaterialID          *string          `gorm:"column:material_id"`
	TreatmentIDs        pq.StringArray   `gorm:"column:treatment_ids;type:text[]"`
	Pricing             json.RawMessage  `gorm:"column:pricing;type:jsonb"`
	IsComplete          bool             `gorm:"column:is_complete;not null;default:false"`
	ExpiresAt           time.Time        `gorm:"column:expires_at;not null;index"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (LensConfiguration) TableName() string {
	return "lens_configurations"
}
