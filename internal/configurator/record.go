package configurator

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
)

// toRecord flattens a wizard configuration into its storage row. The
// prescription and pricing payloads travel as jsonb; everything a query
// touches stays in real columns.
func toRecord(cfg lens.Configuration) (*models.LensConfiguration, error) {
	record := &models.LensConfiguration{
		ID:                  cfg.ID,
		CustomerID:          cfg.CustomerID,
		Step:                cfg.Step,
		SavedPrescriptionID: cfg.SavedPrescriptionID,
		MaterialID:          cfg.MaterialID,
		TreatmentIDs:        pq.StringArray(cfg.TreatmentIDs),
		IsComplete:          cfg.IsComplete,
		ExpiresAt:           cfg.ExpiresAt,
		CreatedAt:           cfg.CreatedAt,
	}
	if cfg.UsageType != nil {
		usage := cfg.UsageType.String()
		record.UsageType = &usage
	}
	if cfg.Source != nil {
		source := cfg.Source.String()
		record.PrescriptionSource = &source
	}
	if cfg.Prescription != nil {
		payload, err := json.Marshal(cfg.Prescription)
		if err != nil {
			return nil, fmt.Errorf("marshal prescription payload: %w", err)
		}
		record.Prescription = payload
	}
	if cfg.Pricing != nil {
		payload, err := json.Marshal(cfg.Pricing)
		if err != nil {
			return nil, fmt.Errorf("marshal pricing payload: %w", err)
		}
		record.Pricing = payload
	}
	return record, nil
}

// fromRecord rebuilds the wizard configuration from its storage row.
func fromRecord(record *models.LensConfiguration) (lens.Configuration, error) {
	cfg := lens.Configuration{
		ID:                  record.ID,
		CustomerID:          record.CustomerID,
		Step:                record.Step,
		SavedPrescriptionID: record.SavedPrescriptionID,
		MaterialID:          record.MaterialID,
		TreatmentIDs:        []string(record.TreatmentIDs),
		IsComplete:          record.IsComplete,
		CreatedAt:           record.CreatedAt,
		ExpiresAt:           record.ExpiresAt,
	}
	if record.UsageType != nil {
		usage, err := enums.ParseLensUsageType(*record.UsageType)
		if err != nil {
			return lens.Configuration{}, fmt.Errorf("stored usage type: %w", err)
		}
		cfg.UsageType = &usage
	}
	if record.PrescriptionSource != nil {
		source, err := enums.ParsePrescriptionSource(*record.PrescriptionSource)
		if err != nil {
			return lens.Configuration{}, fmt.Errorf("stored prescription source: %w", err)
		}
		cfg.Source = &source
	}
	if len(record.Prescription) > 0 {
		var p lens.ValidatedPrescription
		if err := json.Unmarshal(record.Prescription, &p); err != nil {
			return lens.Configuration{}, fmt.Errorf("unmarshal prescription payload: %w", err)
		}
		cfg.Prescription = &p
	}
	if len(record.Pricing) > 0 {
		var pricing lens.PricingBreakdown
		if err := json.Unmarshal(record.Pricing, &pricing); err != nil {
			return lens.Configuration{}, fmt.Errorf("unmarshal pricing payload: %w", err)
		}
		cfg.Pricing = &pricing
	}
	return cfg, nil
}
