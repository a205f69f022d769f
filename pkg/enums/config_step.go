package enums

import "fmt"

// ConfigStep is the wizard step a lens configuration currently sits on.
type ConfigStep string

const (
	StepUsageType    ConfigStep = "usage_type"
	StepPrescription ConfigStep = "prescription"
	StepMaterial     ConfigStep = "material"
	StepTreatments   ConfigStep = "treatments"
	StepReview       ConfigStep = "review"
	StepComplete     ConfigStep = "complete"
)

var validConfigSteps = []ConfigStep{
	StepUsageType,
	StepPrescription,
	StepMaterial,
	StepTreatments,
	StepReview,
	StepComplete,
}

// String implements fmt.Stringer.
func (s ConfigStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ConfigStep.
func (s ConfigStep) IsValid() bool {
	for _, candidate := range validConfigSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// Ordinal returns the position of the step in the wizard flow. Unknown
// steps sort last.
func (s ConfigStep) Ordinal() int {
	for i, candidate := range validConfigSteps {
		if candidate == s {
			return i
		}
	}
	return len(validConfigSteps)
}

// ParseConfigStep converts raw input into a ConfigStep.
func ParseConfigStep(value string) (ConfigStep, error) {
	for _, candidate := range validConfigSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid configuration step %q", value)
}
