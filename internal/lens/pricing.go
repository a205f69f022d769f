package lens

import (
	"github.com/shopspring/decimal"
)

// Price computes the deterministic breakdown for a resolved configuration.
// The discount is supplied by the caller (coupon engine or zero); the core
// only applies it and clamps the total at zero. Currency is inherited from
// the material, and any mismatch across the usage option or treatments is a
// hard CurrencyMismatchError since the catalog must be single-currency per
// configuration.
//
// Rounding: amounts are carried at full precision and only the final total
// is rounded, half away from zero, to 2 decimals.
func Price(resolved ResolvedConfiguration, discount decimal.Decimal) (PricingBreakdown, error) {
	currency := resolved.Material.Currency

	if resolved.Usage.Currency != currency {
		return PricingBreakdown{}, &CurrencyMismatchError{
			Subject: "usage_type",
			Want:    currency,
			Got:     resolved.Usage.Currency,
		}
	}

	treatmentsPrice := decimal.Zero
	for _, treatment := range resolved.Treatments {
		if treatment.Currency != currency {
			return PricingBreakdown{}, &CurrencyMismatchError{
				Subject: "treatments." + treatment.ID,
				Want:    currency,
				Got:     treatment.Currency,
			}
		}
		treatmentsPrice = treatmentsPrice.Add(treatment.Price)
	}

	usagePrice := resolved.Usage.PriceModifier
	materialPrice := resolved.Material.Price
	subtotal := usagePrice.Add(materialPrice).Add(treatmentsPrice)

	if discount.IsNegative() {
		discount = decimal.Zero
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	return PricingBreakdown{
		UsageTypePrice:  usagePrice,
		MaterialPrice:   materialPrice,
		TreatmentsPrice: treatmentsPrice,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		Currency:        currency,
	}, nil
}
