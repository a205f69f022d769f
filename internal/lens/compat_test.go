package lens

import (
	"testing"

	"github.com/mexilux/optica-backend/pkg/enums"
)

func TestResolveSuccess(t *testing.T) {
	t.Parallel()

	resolved, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"photo", "ar"},
	}, testSnapshot())
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
	if resolved.Material.ID != "cr39" {
		t.Fatalf("unexpected material %q", resolved.Material.ID)
	}
	if len(resolved.Treatments) != 2 || resolved.Treatments[0].ID != "ar" {
		t.Fatalf("treatments must come back sorted by id, got %v", resolved.Treatments)
	}
}

func TestResolvePrescriptionRequired(t *testing.T) {
	t.Parallel()

	_, violations := Resolve(ResolveInput{
		UsageType:  enums.UsageSingleVisionDistance,
		MaterialID: "cr39",
	}, testSnapshot())
	if len(violations) != 1 || violations[0].Subject != "prescription" {
		t.Fatalf("expected prescription violation, got %v", violations)
	}
	if violations[0].Kind != ViolationCompatibility {
		t.Fatalf("prescription requirement is a compatibility violation")
	}
}

func TestResolveNonPrescriptionIgnoresPrescription(t *testing.T) {
	t.Parallel()

	// An attached prescription is simply ignored, never an error.
	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageNonPrescription,
		HasPrescription: true,
		MaterialID:      "cr39",
	}, testSnapshot())
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestResolveRequiresAddBothEyes(t *testing.T) {
	t.Parallel()

	// Progressive demands an add value on both eyes.
	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageProgressive,
		HasPrescription: true,
		MaterialID:      "cr39",
	}, testSnapshot())
	if len(violations) != 2 {
		t.Fatalf("expected one violation per eye, got %v", violations)
	}
	subjects := map[string]bool{}
	for _, v := range violations {
		subjects[v.Subject] = true
	}
	if !subjects["right_eye.add"] || !subjects["left_eye.add"] {
		t.Fatalf("expected violations on both adds, got %v", violations)
	}

	_, violations = Resolve(ResolveInput{
		UsageType:       enums.UsageProgressive,
		HasPrescription: true,
		RightAddPresent: true,
		LeftAddPresent:  true,
		MaterialID:      "cr39",
	}, testSnapshot())
	if len(violations) != 0 {
		t.Fatalf("expected no violations with both adds present, got %v", violations)
	}
}

func TestResolveExcludedUsageType(t *testing.T) {
	t.Parallel()

	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionComputer,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"polar"},
	}, testSnapshot())
	if len(violations) != 1 || violations[0].Subject != "treatments.polar" {
		t.Fatalf("expected polarized exclusion violation, got %v", violations)
	}
}

func TestResolveRequiredMaterialGate(t *testing.T) {
	t.Parallel()

	// Blue-light filter is only offered on poly and hi167.
	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"blue"},
	}, testSnapshot())
	if len(violations) != 1 || violations[0].Subject != "treatments.blue" {
		t.Fatalf("expected material gate violation, got %v", violations)
	}

	_, violations = Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "poly",
		TreatmentIDs:    []string{"blue"},
	}, testSnapshot())
	if len(violations) != 0 {
		t.Fatalf("expected blue on poly to resolve, got %v", violations)
	}
}

func TestResolveSymmetricIncompatibilityReportedOnce(t *testing.T) {
	t.Parallel()

	// photo and tint list each other; exactly one violation for the pair.
	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"tint", "photo"},
	}, testSnapshot())
	if len(violations) != 1 {
		t.Fatalf("expected exactly one violation for the pair, got %v", violations)
	}
	if violations[0].Subject != "treatments.photo+tint" {
		t.Fatalf("pair subject must be lexicographically ordered, got %q", violations[0].Subject)
	}
}

func TestResolveInactiveReferenceData(t *testing.T) {
	t.Parallel()

	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "old",
		TreatmentIDs:    []string{"gone"},
	}, testSnapshot())
	if len(violations) != 2 {
		t.Fatalf("expected material and treatment violations, got %v", violations)
	}
	for _, v := range violations {
		if v.Kind != ViolationReferenceData {
			t.Fatalf("inactive catalog rows are reference-data violations, got %v", v)
		}
	}
}

func TestResolveUnknownIDs(t *testing.T) {
	t.Parallel()

	_, violations := Resolve(ResolveInput{
		UsageType:       enums.LensUsageType("trifocal"),
		HasPrescription: true,
		MaterialID:      "nope",
		TreatmentIDs:    []string{"missing"},
	}, testSnapshot())
	if len(violations) != 3 {
		t.Fatalf("expected three violations, got %v", violations)
	}
}

func TestResolveCollectsAcrossConcerns(t *testing.T) {
	t.Parallel()

	// Missing adds, gated treatment and an incompatible pair all at once.
	_, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageProgressive,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"blue", "photo", "tint"},
	}, testSnapshot())
	if len(violations) != 4 {
		t.Fatalf("expected 4 collected violations, got %d: %v", len(violations), violations)
	}
}

func TestResolveDuplicateTreatmentIDs(t *testing.T) {
	t.Parallel()

	resolved, violations := Resolve(ResolveInput{
		UsageType:       enums.UsageSingleVisionDistance,
		HasPrescription: true,
		MaterialID:      "cr39",
		TreatmentIDs:    []string{"ar", "ar"},
	}, testSnapshot())
	if len(violations) != 0 {
		t.Fatalf("duplicates should be deduped, got %v", violations)
	}
	if len(resolved.Treatments) != 1 {
		t.Fatalf("expected one treatment after dedup, got %v", resolved.Treatments)
	}
}
