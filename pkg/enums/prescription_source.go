package enums

import "fmt"

// PrescriptionSource records how a prescription entered the wizard.
type PrescriptionSource string

const (
	PrescriptionSourceSaved       PrescriptionSource = "saved"
	PrescriptionSourceManual      PrescriptionSource = "manual"
	PrescriptionSourceUpload      PrescriptionSource = "upload"
	PrescriptionSourceAppointment PrescriptionSource = "appointment"
)

var validPrescriptionSources = []PrescriptionSource{
	PrescriptionSourceSaved,
	PrescriptionSourceManual,
	PrescriptionSourceUpload,
	PrescriptionSourceAppointment,
}

// String implements fmt.Stringer.
func (s PrescriptionSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PrescriptionSource.
func (s PrescriptionSource) IsValid() bool {
	for _, candidate := range validPrescriptionSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePrescriptionSource converts raw input into a PrescriptionSource.
func ParsePrescriptionSource(value string) (PrescriptionSource, error) {
	for _, candidate := range validPrescriptionSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prescription source %q", value)
}
