package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavedPrescription is a prescription a customer stored for reuse. The
// per-eye measurements live in real columns so they stay queryable; the
// wizard re-validates them on every attach, a stored row is never trusted
// to still be within range.
type SavedPrescription struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Label      string    `gorm:"column:label;not null"`

	RightSphere   decimal.Decimal  `gorm:"column:right_sphere;type:numeric(5,2);not null"`
	RightCylinder *decimal.Decimal `gorm:"column:right_cylinder;type:numeric(5,2)"`
	RightAxis     *int             `gorm:"column:right_axis"`
	RightAdd      *decimal.Decimal `gorm:"column:right_add;type:numeric(5,2)"`
	RightPD       decimal.Decimal  `gorm:"column:right_pd;type:numeric(5,2);not null"`

	LeftSphere   decimal.Decimal  `gorm:"column:left_sphere;type:numeric(5,2);not null"`
	LeftCylinder *decimal.Decimal `gorm:"column:left_cylinder;type:numeric(5,2)"`
	LeftAxis     *int             `gorm:"column:left_axis"`
	LeftAdd      *decimal.Decimal `gorm:"column:left_add;type:numeric(5,2)"`
	LeftPD       decimal.Decimal  `gorm:"column:left_pd;type:numeric(5,2);not null"`

	TotalPD        *decimal.Decimal `gorm:"column:total_pd;type:numeric(5,2)"`
	IssueDate      time.Time        `gorm:"column:issue_date;not null"`
	ExpirationDate time.Time        `gorm:"column:expiration_date;not null"`
	DoctorName     *string          `gorm:"column:doctor_name"`
	DoctorLicense  *string          `gorm:"column:doctor_license"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (SavedPrescription) TableName() string {
	return "saved_prescriptions"
}
