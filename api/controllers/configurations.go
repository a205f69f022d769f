package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/api/responses"
	"github.com/mexilux/optica-backend/api/validators"
	"github.com/mexilux/optica-backend/internal/configurator"
	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type configurationResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	Step                enums.ConfigStep          `json:"step"`
	UsageType           *enums.LensUsageType      `json:"usage_type,omitempty"`
	Source              *enums.PrescriptionSource `json:"source,omitempty"`
	SavedPrescriptionID *uuid.UUID                `json:"saved_prescription_id,omitempty"`
	Prescription        *prescriptionPayload      `json:"prescription,omitempty"`
	MaterialID          *string                   `json:"material_id,omitempty"`
	TreatmentIDs        []string                  `json:"treatment_ids,omitempty"`
	Pricing             *lens.PricingBreakdown    `json:"pricing,omitempty"`
	IsComplete          bool                      `json:"is_complete"`
	CreatedAt           time.Time                 `json:"created_at"`
	ExpiresAt           time.Time                 `json:"expires_at"`
}

func configurationResponseFromLens(cfg *lens.Configuration) configurationResponse {
	out := configurationResponse{
		ID:                  cfg.ID,
		Step:                cfg.Step,
		UsageType:           cfg.UsageType,
		Source:              cfg.Source,
		SavedPrescriptionID: cfg.SavedPrescriptionID,
		MaterialID:          cfg.MaterialID,
		TreatmentIDs:        cfg.TreatmentIDs,
		Pricing:             cfg.Pricing,
		IsComplete:          cfg.IsComplete,
		CreatedAt:           cfg.CreatedAt,
		ExpiresAt:           cfg.ExpiresAt,
	}
	if cfg.Prescription != nil {
		payload := payloadFromLens(cfg.Prescription.Prescription)
		out.Prescription = &payload
	}
	return out
}

// ConfigurationStart opens a new wizard session for the customer.
func ConfigurationStart(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "configurator service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.Start(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, configurationResponseFromLens(cfg))
	}
}

// ConfigurationGet returns the customer's configuration in its current step.
func ConfigurationGet(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "configurator service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuidURLParam(r, "configurationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.Get(r.Context(), customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, configurationResponseFromLens(cfg))
	}
}

type setUsageTypeRequest struct {
	UsageType string `json:"usage_type" validate:"required"`
}

// ConfigurationSetUsageType applies the usage type step.
func ConfigurationSetUsageType(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload setUsageTypeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		usage, err := enums.ParseLensUsageType(strings.TrimSpace(payload.UsageType))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid usage type").
				WithDetails(map[string]any{"usage_type": payload.UsageType})
		}
		return svc.SetUsageType(r.Context(), customerID, id, usage)
	})
}

type setPrescriptionRequest struct {
	Source              string               `json:"source" validate:"required"`
	SavedPrescriptionID *uuid.UUID           `json:"saved_prescription_id"`
	Prescription        *prescriptionPayload `json:"prescription"`
}

// ConfigurationSetPrescription applies the prescription step. Saved
// prescriptions are referenced by id; other sources carry the measurements
// inline.
func ConfigurationSetPrescription(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload setPrescriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		source, err := enums.ParsePrescriptionSource(strings.TrimSpace(payload.Source))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid prescription source").
				WithDetails(map[string]any{"source": payload.Source})
		}

		input := configurator.PrescriptionInput{
			Source:              source,
			SavedPrescriptionID: payload.SavedPrescriptionID,
		}
		if payload.Prescription != nil {
			p := payload.Prescription.toLens()
			input.Prescription = &p
		}
		return svc.SetPrescription(r.Context(), customerID, id, input)
	})
}

type setMaterialRequest struct {
	MaterialID string `json:"material_id" validate:"required"`
}

// ConfigurationSetMaterial applies the material step.
func ConfigurationSetMaterial(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload setMaterialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SetMaterial(r.Context(), customerID, id, strings.TrimSpace(payload.MaterialID))
	})
}

type setTreatmentsRequest struct {
	TreatmentIDs []string `json:"treatment_ids"`
}

// ConfigurationSetTreatments applies the treatments step. An empty list is a
// valid selection.
func ConfigurationSetTreatments(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload setTreatmentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SetTreatments(r.Context(), customerID, id, payload.TreatmentIDs)
	})
}

type completeRequest struct {
	Discount *decimal.Decimal `json:"discount"`
}

// ConfigurationComplete prices the configuration and closes the wizard.
func ConfigurationComplete(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload completeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		discount := decimal.Zero
		if payload.Discount != nil {
			discount = *payload.Discount
		}
		return svc.Complete(r.Context(), customerID, id, discount)
	})
}

type reopenRequest struct {
	Step string `json:"step" validate:"required"`
}

// ConfigurationReopen jumps back to a previously completed step.
func ConfigurationReopen(svc configurator.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error) {
		var payload reopenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		step, err := enums.ParseConfigStep(strings.TrimSpace(payload.Step))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid step").
				WithDetails(map[string]any{"step": payload.Step})
		}
		return svc.Reopen(r.Context(), customerID, id, step)
	})
}

func transitionHandler(svc configurator.Service, logg *logger.Logger, apply func(r *http.Request, customerID, id uuid.UUID) (*lens.Configuration, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "configurator service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuidURLParam(r, "configurationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := apply(r, customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, configurationResponseFromLens(cfg))
	}
}
