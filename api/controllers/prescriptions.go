package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/api/middleware"
	"github.com/mexilux/optica-backend/api/responses"
	"github.com/mexilux/optica-backend/api/validators"
	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type eyePayload struct {
	Sphere   decimal.Decimal  `json:"sphere"`
	Cylinder *decimal.Decimal `json:"cylinder"`
	Axis     *int             `json:"axis"`
	Add      *decimal.Decimal `json:"add"`
	PD       decimal.Decimal  `json:"pd"`
}

type prescriptionPayload struct {
	RightEye       eyePayload       `json:"right_eye"`
	LeftEye        eyePayload       `json:"left_eye"`
	TotalPD        *decimal.Decimal `json:"total_pd"`
	IssueDate      time.Time        `json:"issue_date"`
	ExpirationDate time.Time        `json:"expiration_date"`
	DoctorName     *string          `json:"doctor_name"`
	DoctorLicense  *string          `json:"doctor_license"`
}

func (p prescriptionPayload) toLens() lens.Prescription {
	totalPD := p.RightEye.PD.Add(p.LeftEye.PD)
	if p.TotalPD != nil {
		totalPD = *p.TotalPD
	}
	return lens.Prescription{
		RightEye:       eyeFromPayload(p.RightEye),
		LeftEye:        eyeFromPayload(p.LeftEye),
		TotalPD:        totalPD,
		IssueDate:      p.IssueDate,
		ExpirationDate: p.ExpirationDate,
		DoctorName:     p.DoctorName,
		DoctorLicense:  p.DoctorLicense,
	}
}

func eyeFromPayload(e eyePayload) lens.EyePrescription {
	return lens.EyePrescription{
		Sphere:   e.Sphere,
		Cylinder: e.Cylinder,
		Axis:     e.Axis,
		Add:      e.Add,
		PD:       e.PD,
	}
}

func payloadFromLens(p lens.Prescription) prescriptionPayload {
	totalPD := p.TotalPD
	return prescriptionPayload{
		RightEye:       payloadFromEye(p.RightEye),
		LeftEye:        payloadFromEye(p.LeftEye),
		TotalPD:        &totalPD,
		IssueDate:      p.IssueDate,
		ExpirationDate: p.ExpirationDate,
		DoctorName:     p.DoctorName,
		DoctorLicense:  p.DoctorLicense,
	}
}

func payloadFromEye(e lens.EyePrescription) eyePayload {
	return eyePayload{
		Sphere:   e.Sphere,
		Cylinder: e.Cylinder,
		Axis:     e.Axis,
		Add:      e.Add,
		PD:       e.PD,
	}
}

type prescriptionCreateRequest struct {
	Label        string              `json:"label" validate:"required,min=1,max=120"`
	Prescription prescriptionPayload `json:"prescription"`
}

type prescriptionResponse struct {
	ID           uuid.UUID           `json:"id"`
	Label        string              `json:"label"`
	Prescription prescriptionPayload `json:"prescription"`
}

func prescriptionResponseFromItem(item *prescriptions.Item) prescriptionResponse {
	return prescriptionResponse{
		ID:           item.ID,
		Label:        item.Label,
		Prescription: payloadFromLens(item.Prescription),
	}
}

// PrescriptionCreate stores a prescription for reuse after medical validation.
func PrescriptionCreate(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescriptions service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload prescriptionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Save(r.Context(), customerID, prescriptions.SaveInput{
			Label:        validators.SanitizeString(payload.Label, 120),
			Prescription: payload.Prescription.toLens(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, prescriptionResponseFromItem(item))
	}
}

// PrescriptionList returns the customer's saved prescriptions, newest first.
func PrescriptionList(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescriptions service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), prescriptions.ListParams{
			CustomerID: customerID,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]prescriptionResponse, len(result.Items))
		for i := range result.Items {
			items[i] = prescriptionResponseFromItem(&result.Items[i])
		}
		responses.WriteSuccess(w, map[string]any{
			"items":  items,
			"cursor": result.Cursor,
		})
	}
}

// PrescriptionGet returns a single saved prescription owned by the customer.
func PrescriptionGet(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescriptions service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuidURLParam(r, "prescriptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), customerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prescriptionResponseFromItem(item))
	}
}

// PrescriptionDelete removes a saved prescription owned by the customer.
func PrescriptionDelete(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescriptions service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuidURLParam(r, "prescriptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), customerID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func customerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.CustomerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity required")
	}
	customerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}
	return customerID, nil
}

func uuidURLParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).
			WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
