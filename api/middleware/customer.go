package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mexilux/optica-backend/api/responses"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

const customerIDHeader = "X-Customer-Id"

// CustomerIdentity reads the customer identifier from the request header and
// seeds the context with it. Identity is asserted upstream; this layer only
// requires that the header carries a well-formed UUID.
func CustomerIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(customerIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "customer identity required").
						WithDetails(map[string]any{"header": customerIDHeader}))
				return
			}
			customerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "customer identity must be a uuid").
						WithDetails(map[string]any{"header": customerIDHeader}))
				return
			}

			ctx := WithCustomerID(r.Context(), customerID.String())
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, customerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
