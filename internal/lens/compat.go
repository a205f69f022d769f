package lens

import (
	"fmt"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// ResolveInput is the prescription-presence and selection summary the
// resolver needs. It deliberately carries booleans instead of the full
// prescription: the resolver rules only on presence, never on values.
type ResolveInput struct {
	UsageType       enums.LensUsageType
	HasPrescription bool
	RightAddPresent bool
	LeftAddPresent  bool
	MaterialID      string
	TreatmentIDs    []string
}

// ResolvedConfiguration is a combination proven legal by Resolve. Treatments
// are sorted by id so downstream pricing is order-independent.
type ResolvedConfiguration struct {
	Usage      UsageOption
	Material   Material
	Treatments []Treatment
}

// Resolve checks a usage-type/material/treatment combination against the
// catalog compatibility rules. All violations are collected, never
// short-circuited. Pure function over the snapshot.
func Resolve(input ResolveInput, snap Snapshot) (ResolvedConfiguration, []Violation) {
	var violations []Violation

	usage, ok := snap.UsageOption(input.UsageType)
	if !ok {
		violations = append(violations, Violation{
			Kind:    ViolationReferenceData,
			Subject: "usage_type",
			Reason:  fmt.Sprintf("unknown usage type %q", input.UsageType),
		})
	} else {
		if !usage.Active {
			violations = append(violations, Violation{
				Kind:    ViolationReferenceData,
				Subject: "usage_type",
				Reason:  fmt.Sprintf("usage type %q is inactive", input.UsageType),
			})
		}
		if usage.RequiresPrescription && !input.HasPrescription {
			violations = append(violations, Violation{
				Kind:    ViolationCompatibility,
				Subject: "prescription",
				Reason:  fmt.Sprintf("usage type %q requires a prescription", input.UsageType),
			})
		}
		if usage.RequiresAdd {
			if !input.RightAddPresent {
				violations = append(violations, Violation{
					Kind:    ViolationCompatibility,
					Subject: "right_eye.add",
					Reason:  fmt.Sprintf("usage type %q requires an add value on both eyes", input.UsageType),
				})
			}
			if !input.LeftAddPresent {
				violations = append(violations, Violation{
					Kind:    ViolationCompatibility,
					Subject: "left_eye.add",
					Reason:  fmt.Sprintf("usage type %q requires an add value on both eyes", input.UsageType),
				})
			}
		}
	}

	material, ok := snap.Material(input.MaterialID)
	if !ok {
		violations = append(violations, Violation{
			Kind:    ViolationReferenceData,
			Subject: "material",
			Reason:  fmt.Sprintf("unknown material %q", input.MaterialID),
		})
	} else if !material.Active {
		violations = append(violations, Violation{
			Kind:    ViolationReferenceData,
			Subject: "material",
			Reason:  fmt.Sprintf("material %q is inactive", input.MaterialID),
		})
	}

	treatmentIDs := sortedUnique(input.TreatmentIDs)
	treatments := make([]Treatment, 0, len(treatmentIDs))
	byID := make(map[string]Treatment, len(treatmentIDs))

	for _, id := range treatmentIDs {
		treatment, found := snap.Treatment(id)
		if !found {
			violations = append(violations, Violation{
				Kind:    ViolationReferenceData,
				Subject: "treatments." + id,
				Reason:  fmt.Sprintf("unknown treatment %q", id),
			})
			continue
		}
		if !treatment.Active {
			violations = append(violations, Violation{
				Kind:    ViolationReferenceData,
				Subject: "treatments." + id,
				Reason:  fmt.Sprintf("treatment %q is inactive", id),
			})
			continue
		}

		for _, excluded := range treatment.ExcludedUsageTypes {
			if excluded == input.UsageType {
				violations = append(violations, Violation{
					Kind:    ViolationCompatibility,
					Subject: "treatments." + id,
					Reason:  fmt.Sprintf("treatment %q cannot be applied to usage type %q", id, input.UsageType),
				})
			}
		}

		if len(treatment.RequiresMaterials) > 0 && !containsString(treatment.RequiresMaterials, input.MaterialID) {
			violations = append(violations, Violation{
				Kind:    ViolationCompatibility,
				Subject: "treatments." + id,
				Reason:  fmt.Sprintf("treatment %q is not available for material %q", id, input.MaterialID),
			})
		}

		byID[id] = treatment
		treatments = append(treatments, treatment)
	}

	// Pairwise incompatibility is symmetric: a conflict seen from either side
	// is reported once, keyed on the lexicographically-first pair so the error
	// list stays deterministic.
	for i := 0; i < len(treatmentIDs); i++ {
		for j := i + 1; j < len(treatmentIDs); j++ {
			first, second := treatmentIDs[i], treatmentIDs[j]
			a, okA := byID[first]
			b, okB := byID[second]
			if !okA || !okB {
				continue
			}
			if containsString(a.IncompatibleWith, second) || containsString(b.IncompatibleWith, first) {
				violations = append(violations, Violation{
					Kind:    ViolationCompatibility,
					Subject: fmt.Sprintf("treatments.%s+%s", first, second),
					Reason:  fmt.Sprintf("treatments %q and %q are incompatible", first, second),
				})
			}
		}
	}

	if len(violations) > 0 {
		return ResolvedConfiguration{}, violations
	}

	return ResolvedConfiguration{
		Usage:      usage,
		Material:   material,
		Treatments: treatments,
	}, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
