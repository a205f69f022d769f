package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/api/responses"
	"github.com/mexilux/optica-backend/internal/catalog"
	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type materialResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Index          string          `json:"index"`
	ThinnessFactor decimal.Decimal `json:"thinness_factor"`
	Polycarbonate  bool            `json:"polycarbonate"`
	BuiltInUV      bool            `json:"built_in_uv"`
	Price          decimal.Decimal `json:"price"`
	Currency       enums.Currency  `json:"currency"`
}

type treatmentResponse struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Category           enums.TreatmentCategory `json:"category"`
	Price              decimal.Decimal         `json:"price"`
	Currency           enums.Currency          `json:"currency"`
	IncompatibleWith   []string                `json:"incompatible_with,omitempty"`
	RequiresMaterials  []string                `json:"requires_materials,omitempty"`
	ExcludedUsageTypes []enums.LensUsageType   `json:"excluded_usage_types,omitempty"`
}

type usageOptionResponse struct {
	Type                 enums.LensUsageType `json:"type"`
	RequiresPrescription bool                `json:"requires_prescription"`
	RequiresAdd          bool                `json:"requires_add"`
	PriceModifier        decimal.Decimal     `json:"price_modifier"`
	Currency             enums.Currency      `json:"currency"`
}

// CatalogMaterials lists active lens materials ordered by refractive index.
func CatalogMaterials(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		materials, err := svc.ListMaterials(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]materialResponse, len(materials))
		for i, m := range materials {
			out[i] = materialResponseFromLens(m)
		}
		responses.WriteSuccess(w, out)
	}
}

// CatalogTreatments lists active lens treatments with their compatibility rules.
func CatalogTreatments(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		treatments, err := svc.ListTreatments(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]treatmentResponse, len(treatments))
		for i, tr := range treatments {
			out[i] = treatmentResponseFromLens(tr)
		}
		responses.WriteSuccess(w, out)
	}
}

// CatalogUsageOptions lists the selectable usage types and their modifiers.
func CatalogUsageOptions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		options, err := svc.ListUsageOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]usageOptionResponse, len(options))
		for i, opt := range options {
			out[i] = usageOptionResponse{
				Type:                 opt.Type,
				RequiresPrescription: opt.RequiresPrescription,
				RequiresAdd:          opt.RequiresAdd,
				PriceModifier:        opt.PriceModifier,
				Currency:             opt.Currency,
			}
		}
		responses.WriteSuccess(w, out)
	}
}

func materialResponseFromLens(m lens.Material) materialResponse {
	return materialResponse{
		ID:             m.ID,
		Name:           m.Name,
		Index:          m.Index,
		ThinnessFactor: m.ThinnessFactor,
		Polycarbonate:  m.Polycarbonate,
		BuiltInUV:      m.BuiltInUV,
		Price:          m.Price,
		Currency:       m.Currency,
	}
}

func treatmentResponseFromLens(tr lens.Treatment) treatmentResponse {
	return treatmentResponse{
		ID:                 tr.ID,
		Name:               tr.Name,
		Category:           tr.Category,
		Price:              tr.Price,
		Currency:           tr.Currency,
		IncompatibleWith:   tr.IncompatibleWith,
		RequiresMaterials:  tr.RequiresMaterials,
		ExcludedUsageTypes: tr.ExcludedUsageTypes,
	}
}
