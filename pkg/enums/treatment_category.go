package enums

import "fmt"

// TreatmentCategory groups lens treatments by the property they add.
type TreatmentCategory string

const (
	TreatmentCoating      TreatmentCategory = "coating"
	TreatmentTint         TreatmentCategory = "tint"
	TreatmentPhotochromic TreatmentCategory = "photochromic"
	TreatmentBlueLight    TreatmentCategory = "blue_light"
	TreatmentPolarized    TreatmentCategory = "polarized"
)

var validTreatmentCategories = []TreatmentCategory{
	TreatmentCoating,
	TreatmentTint,
	TreatmentPhotochromic,
	TreatmentBlueLight,
	TreatmentPolarized,
}

// String implements fmt.Stringer.
func (c TreatmentCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known TreatmentCategory.
func (c TreatmentCategory) IsValid() bool {
	for _, candidate := range validTreatmentCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTreatmentCategory converts raw input into a TreatmentCategory.
func ParseTreatmentCategory(value string) (TreatmentCategory, error) {
	for _, candidate := range validTreatmentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid treatment category %q", value)
}
