package enums

import "testing"

func TestParseLensUsageType(t *testing.T) {
	if got, err := ParseLensUsageType("progressive"); err != nil || got != UsageProgressive {
		t.Fatalf("expected progressive, got %q err=%v", got, err)
	}
	if _, err := ParseLensUsageType("trifocal"); err == nil {
		t.Fatal("expected error for unknown usage type")
	}
	if UsageNonPrescription.IsValid() != true {
		t.Fatal("non_prescription should be valid")
	}
}

func TestConfigStepOrdinal(t *testing.T) {
	if StepUsageType.Ordinal() >= StepPrescription.Ordinal() {
		t.Fatal("usage_type must precede prescription")
	}
	if StepReview.Ordinal() >= StepComplete.Ordinal() {
		t.Fatal("review must precede complete")
	}
	if ConfigStep("bogus").Ordinal() != len(validConfigSteps) {
		t.Fatal("unknown steps must sort last")
	}
}

func TestParseCurrency(t *testing.T) {
	if got, err := ParseCurrency("MXN"); err != nil || got != CurrencyMXN {
		t.Fatalf("expected MXN, got %q err=%v", got, err)
	}
	if _, err := ParseCurrency("EUR"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

func TestParseTreatmentCategory(t *testing.T) {
	if got, err := ParseTreatmentCategory("blue_light"); err != nil || got != TreatmentBlueLight {
		t.Fatalf("expected blue_light, got %q err=%v", got, err)
	}
	if _, err := ParseTreatmentCategory("mirror"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
