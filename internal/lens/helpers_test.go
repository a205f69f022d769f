package lens

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func intPtr(value int) *int {
	return &value
}

func validEye() EyePrescription {
	return EyePrescription{
		Sphere:   dec("-2.50"),
		Cylinder: decPtr("-0.75"),
		Axis:     intPtr(90),
		PD:       dec("31"),
	}
}

func validPrescription() Prescription {
	issue := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	return Prescription{
		RightEye:       validEye(),
		LeftEye:        validEye(),
		TotalPD:        dec("62"),
		IssueDate:      issue,
		ExpirationDate: issue.AddDate(1, 0, 0),
	}
}

func testSnapshot() Snapshot {
	materials := []Material{
		{ID: "cr39", Name: "CR-39", Index: "1.50", ThinnessFactor: dec("1.0"), Price: dec("800"), Currency: enums.CurrencyMXN, Active: true},
		{ID: "poly", Name: "Policarbonato", Index: "1.56", ThinnessFactor: dec("1.2"), Polycarbonate: true, BuiltInUV: true, Price: dec("1200"), Currency: enums.CurrencyMXN, Active: true},
		{ID: "hi167", Name: "Alto índice 1.67", Index: "1.67", ThinnessFactor: dec("1.6"), Price: dec("2200"), Currency: enums.CurrencyMXN, Active: true},
		{ID: "old", Name: "Descontinuado", Index: "1.60", ThinnessFactor: dec("1.4"), Price: dec("1500"), Currency: enums.CurrencyMXN, Active: false},
	}
	treatments := []Treatment{
		{ID: "ar", Name: "Antirreflejante", Category: enums.TreatmentCoating, Price: dec("300"), Currency: enums.CurrencyMXN, Active: true},
		{ID: "photo", Name: "Fotocromático", Category: enums.TreatmentPhotochromic, Price: dec("450"), Currency: enums.CurrencyMXN, IncompatibleWith: []string{"tint"}, Active: true},
		{ID: "tint", Name: "Tinte sólido", Category: enums.TreatmentTint, Price: dec("250"), Currency: enums.CurrencyMXN, IncompatibleWith: []string{"photo"}, Active: true},
		{ID: "blue", Name: "Filtro luz azul", Category: enums.TreatmentBlueLight, Price: dec("350"), Currency: enums.CurrencyMXN, RequiresMaterials: []string{"poly", "hi167"}, Active: true},
		{ID: "polar", Name: "Polarizado", Category: enums.TreatmentPolarized, Price: dec("500"), Currency: enums.CurrencyMXN, ExcludedUsageTypes: []enums.LensUsageType{enums.UsageSingleVisionComputer}, Active: true},
		{ID: "gone", Name: "Retirado", Category: enums.TreatmentCoating, Price: dec("100"), Currency: enums.CurrencyMXN, Active: false},
	}
	options := []UsageOption{
		{Type: enums.UsageSingleVisionDistance, RequiresPrescription: true, PriceModifier: dec("0"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageSingleVisionNear, RequiresPrescription: true, PriceModifier: dec("0"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageSingleVisionComputer, RequiresPrescription: true, PriceModifier: dec("150"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageBifocal, RequiresPrescription: true, RequiresAdd: true, PriceModifier: dec("400"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageProgressive, RequiresPrescription: true, RequiresAdd: true, PriceModifier: dec("900"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageNonPrescription, RequiresPrescription: false, PriceModifier: dec("0"), Currency: enums.CurrencyMXN, Active: true},
	}
	return NewSnapshot(materials, treatments, options)
}
