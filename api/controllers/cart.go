package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/api/responses"
	"github.com/mexilux/optica-backend/api/validators"
	"github.com/mexilux/optica-backend/internal/cart"
	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type cartItemResponse struct {
	ID              uuid.UUID             `json:"id"`
	ConfigurationID uuid.UUID             `json:"configuration_id"`
	UsageType       string                `json:"usage_type"`
	MaterialID      string                `json:"material_id"`
	TreatmentIDs    []string              `json:"treatment_ids,omitempty"`
	Pricing         lens.PricingBreakdown `json:"pricing"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	Quantity        int                   `json:"quantity"`
}

type cartResponse struct {
	ID       uuid.UUID          `json:"id"`
	Status   enums.CartStatus   `json:"status"`
	Currency enums.Currency     `json:"currency"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Total    decimal.Decimal    `json:"total"`
	Items    []cartItemResponse `json:"items"`
}

func cartResponseFromView(c *cart.Cart) cartResponse {
	items := make([]cartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemResponse{
			ID:              item.ID,
			ConfigurationID: item.ConfigurationID,
			UsageType:       item.UsageType,
			MaterialID:      item.MaterialID,
			TreatmentIDs:    item.TreatmentIDs,
			Pricing:         item.Pricing,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
		}
	}
	return cartResponse{
		ID:       c.ID,
		Status:   c.Status,
		Currency: c.Currency,
		Subtotal: c.Subtotal,
		Total:    c.Total,
		Items:    items,
	}
}

// CartGet returns the customer's active cart, empty when none exists.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartResponseFromView(view))
	}
}

type cartAddRequest struct {
	ConfigurationID uuid.UUID `json:"configuration_id" validate:"required"`
}

// CartAddConfiguration attaches a completed configuration to the active cart.
func CartAddConfiguration(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.ConfigurationID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "configuration_id required"))
			return
		}

		view, err := svc.AddConfiguration(r.Context(), customerID, payload.ConfigurationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cartResponseFromView(view))
	}
}

// CartRemoveItem removes one cart line and reprices the cart.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		customerID, err := customerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuidURLParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), customerID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartResponseFromView(view))
	}
}
