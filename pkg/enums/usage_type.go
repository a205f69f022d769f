package enums

import "fmt"

// LensUsageType identifies the optical purpose a lens is configured for.
type LensUsageType string

const (
	UsageSingleVisionDistance LensUsageType = "single_vision_distance"
	UsageSingleVisionNear     LensUsageType = "single_vision_near"
	UsageSingleVisionComputer LensUsageType = "single_vision_computer"
	UsageBifocal              LensUsageType = "bifocal"
	UsageProgressive          LensUsageType = "progressive"
	UsageNonPrescription      LensUsageType = "non_prescription"
)

var validLensUsageTypes = []LensUsageType{
	UsageSingleVisionDistance,
	UsageSingleVisionNear,
	UsageSingleVisionComputer,
	UsageBifocal,
	UsageProgressive,
	UsageNonPrescription,
}

// String implements fmt.Stringer.
func (u LensUsageType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known LensUsageType.
func (u LensUsageType) IsValid() bool {
	for _, candidate := range validLensUsageTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseLensUsageType converts raw input into a LensUsageType.
func ParseLensUsageType(value string) (LensUsageType, error) {
	for _, candidate := range validLensUsageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lens usage type %q", value)
}
