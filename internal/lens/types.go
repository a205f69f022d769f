package lens

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// EyePrescription holds the correction values for a single eye. Cylinder,
// Axis and Add are nil when the field is absent; a nil pointer is the only
// representation of "not prescribed", never a zero value.
type EyePrescription struct {
	Sphere   decimal.Decimal
	Cylinder *decimal.Decimal
	Axis     *int
	Add      *decimal.Decimal
	PD       decimal.Decimal
}

// Prescription is a full two-eye medical prescription.
type Prescription struct {
	RightEye       EyePrescription
	LeftEye        EyePrescription
	TotalPD        decimal.Decimal
	IssueDate      time.Time
	ExpirationDate time.Time
	DoctorName     *string
	DoctorLicense  *string
}

// ValidatedPrescription wraps a Prescription that passed validation. Only the
// validator constructs it, so holding one is proof the medical rules held.
type ValidatedPrescription struct {
	Prescription
}

// Material is a lens material catalog entry. Read-only reference data.
type Material struct {
	ID             string
	Name           string
	Index          string
	ThinnessFactor decimal.Decimal
	Polycarbonate  bool
	BuiltInUV      bool
	Price          decimal.Decimal
	Currency       enums.Currency
	Active         bool
}

// MaterialIndexes is the fixed ordered set of supported refractive indexes.
var MaterialIndexes = []string{"1.50", "1.56", "1.60", "1.67", "1.74"}

// Treatment is a lens treatment catalog entry. Read-only reference data.
type Treatment struct {
	ID                 string
	Name               string
	Category           enums.TreatmentCategory
	Price              decimal.Decimal
	Currency           enums.Currency
	IncompatibleWith   []string
	RequiresMaterials  []string
	ExcludedUsageTypes []enums.LensUsageType
	Active             bool
}

// UsageOption describes one selectable usage type and its pricing modifier.
type UsageOption struct {
	Type                 enums.LensUsageType
	RequiresPrescription bool
	RequiresAdd          bool
	PriceModifier        decimal.Decimal
	Currency             enums.Currency
	Active               bool
}

// Snapshot is an immutable view of the catalog reference data. The calling
// layer builds it from already-fetched rows; the core never queries a store.
type Snapshot struct {
	materials    map[string]Material
	treatments   map[string]Treatment
	usageOptions map[enums.LensUsageType]UsageOption
}

// NewSnapshot indexes the provided reference data for resolution and pricing.
func NewSnapshot(materials []Material, treatments []Treatment, options []UsageOption) Snapshot {
	snap := Snapshot{
		materials:    make(map[string]Material, len(materials)),
		treatments:   make(map[string]Treatment, len(treatments)),
		usageOptions: make(map[enums.LensUsageType]UsageOption, len(options)),
	}
	for _, m := range materials {
		snap.materials[m.ID] = m
	}
	for _, tr := range treatments {
		snap.treatments[tr.ID] = tr
	}
	for _, opt := range options {
		snap.usageOptions[opt.Type] = opt
	}
	return snap
}

// Material returns the material with the given id.
func (s Snapshot) Material(id string) (Material, bool) {
	m, ok := s.materials[id]
	return m, ok
}

// Treatment returns the treatment with the given id.
func (s Snapshot) Treatment(id string) (Treatment, bool) {
	tr, ok := s.treatments[id]
	return tr, ok
}

// UsageOption returns the option for the given usage type.
func (s Snapshot) UsageOption(usage enums.LensUsageType) (UsageOption, bool) {
	opt, ok := s.usageOptions[usage]
	return opt, ok
}

// PricingBreakdown is the deterministic price decomposition of a completed
// configuration. Derived data: recomputed whenever inputs change.
type PricingBreakdown struct {
	UsageTypePrice  decimal.Decimal `json:"usage_type_price"`
	MaterialPrice   decimal.Decimal `json:"material_price"`
	TreatmentsPrice decimal.Decimal `json:"treatments_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Currency        enums.Currency  `json:"currency"`
}

// Equal reports whether two breakdowns carry the same amounts and currency.
func (p PricingBreakdown) Equal(other PricingBreakdown) bool {
	return p.Currency == other.Currency &&
		p.UsageTypePrice.Equal(other.UsageTypePrice) &&
		p.MaterialPrice.Equal(other.MaterialPrice) &&
		p.TreatmentsPrice.Equal(other.TreatmentsPrice) &&
		p.Subtotal.Equal(other.Subtotal) &&
		p.Discount.Equal(other.Discount) &&
		p.Total.Equal(other.Total)
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
