package lens

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	sphereMin = decimal.NewFromInt(-20)
	sphereMax = decimal.NewFromInt(20)

	cylinderMin = decimal.NewFromInt(-6)
	cylinderMax = decimal.NewFromInt(6)

	addMin = decimal.RequireFromString("0.75")
	addMax = decimal.RequireFromString("3.50")

	monocularPDMin = decimal.NewFromInt(25)
	monocularPDMax = decimal.NewFromInt(40)

	totalPDMin = decimal.NewFromInt(54)
	totalPDMax = decimal.NewFromInt(74)

	quarterStep = decimal.RequireFromString("0.25")
)

// DefaultPDTolerance is the allowed gap in millimeters between totalPD and
// the sum of the monocular PDs. Inherited from the storefront's rule, not a
// cited optical standard.
var DefaultPDTolerance = decimal.NewFromInt(2)

// PrescriptionRules carries the tunable parts of prescription validation.
type PrescriptionRules struct {
	PDTolerance decimal.Decimal
}

// DefaultPrescriptionRules returns the rules the storefront ships with.
func DefaultPrescriptionRules() PrescriptionRules {
	return PrescriptionRules{PDTolerance: DefaultPDTolerance}
}

// ValidatePrescription applies DefaultPrescriptionRules.
func ValidatePrescription(p Prescription) (ValidatedPrescription, []FieldError) {
	return DefaultPrescriptionRules().Validate(p)
}

// Validate checks the prescription against the medical range, step and
// dependency rules. Every violation is collected so the caller can report
// all problems at once. Pure: no side effects, deterministic, and running it
// again on a ValidatedPrescription's data yields the same success.
func (r PrescriptionRules) Validate(p Prescription) (ValidatedPrescription, []FieldError) {
	var errs []FieldError

	errs = append(errs, validateEye("right_eye", p.RightEye)...)
	errs = append(errs, validateEye("left_eye", p.LeftEye)...)

	if p.TotalPD.LessThan(totalPDMin) || p.TotalPD.GreaterThan(totalPDMax) {
		errs = append(errs, FieldError{
			Field:  "total_pd",
			Reason: fmt.Sprintf("must be between %s and %s mm", totalPDMin, totalPDMax),
		})
	} else {
		tolerance := r.PDTolerance
		if tolerance.IsNegative() {
			tolerance = DefaultPDTolerance
		}
		sum := p.RightEye.PD.Add(p.LeftEye.PD)
		if sum.Sub(p.TotalPD).Abs().GreaterThan(tolerance) {
			errs = append(errs, FieldError{
				Field:  "total_pd",
				Reason: fmt.Sprintf("must be within %s mm of the monocular sum %s", tolerance, sum),
			})
		}
	}

	if !p.ExpirationDate.After(p.IssueDate) {
		errs = append(errs, FieldError{
			Field:  "expiration_date",
			Reason: "must be after the issue date",
		})
	}

	if len(errs) > 0 {
		return ValidatedPrescription{}, errs
	}
	return ValidatedPrescription{Prescription: p}, nil
}

func validateEye(prefix string, eye EyePrescription) []FieldError {
	var errs []FieldError

	if eye.Sphere.LessThan(sphereMin) || eye.Sphere.GreaterThan(sphereMax) {
		errs = append(errs, FieldError{
			Field:  prefix + ".sphere",
			Reason: fmt.Sprintf("must be between %s and %s diopters", sphereMin, sphereMax),
		})
	} else if !isQuarterStep(eye.Sphere) {
		errs = append(errs, FieldError{
			Field:  prefix + ".sphere",
			Reason: "must be a multiple of 0.25 diopters",
		})
	}

	if eye.Cylinder != nil {
		cyl := *eye.Cylinder
		if cyl.LessThan(cylinderMin) || cyl.GreaterThan(cylinderMax) {
			errs = append(errs, FieldError{
				Field:  prefix + ".cylinder",
				Reason: fmt.Sprintf("must be between %s and %s diopters", cylinderMin, cylinderMax),
			})
		} else if !isQuarterStep(cyl) {
			errs = append(errs, FieldError{
				Field:  prefix + ".cylinder",
				Reason: "must be a multiple of 0.25 diopters",
			})
		}
	}

	// Axis and cylinder depend on each other in both directions: a non-zero
	// cylinder demands an axis, and an axis without a non-zero cylinder is
	// just as invalid.
	cylinderActive := eye.Cylinder != nil && !eye.Cylinder.IsZero()
	switch {
	case cylinderActive && eye.Axis == nil:
		errs = append(errs, FieldError{
			Field:  prefix + ".axis",
			Reason: "required because cylinder is non-zero",
		})
	case !cylinderActive && eye.Axis != nil:
		errs = append(errs, FieldError{
			Field:  prefix + ".axis",
			Reason: "must be absent when cylinder is absent or zero",
		})
	case eye.Axis != nil:
		if *eye.Axis < 1 || *eye.Axis > 180 {
			errs = append(errs, FieldError{
				Field:  prefix + ".axis",
				Reason: "must be an integer between 1 and 180 degrees",
			})
		}
	}

	if eye.Add != nil {
		add := *eye.Add
		if add.LessThan(addMin) || add.GreaterThan(addMax) {
			errs = append(errs, FieldError{
				Field:  prefix + ".add",
				Reason: fmt.Sprintf("must be between +%s and +%s diopters", addMin, addMax),
			})
		} else if !isQuarterStep(add) {
			errs = append(errs, FieldError{
				Field:  prefix + ".add",
				Reason: "must be a multiple of 0.25 diopters",
			})
		}
	}

	if eye.PD.LessThan(monocularPDMin) || eye.PD.GreaterThan(monocularPDMax) {
		errs = append(errs, FieldError{
			Field:  prefix + ".pd",
			Reason: fmt.Sprintf("must be between %s and %s mm", monocularPDMin, monocularPDMax),
		})
	}

	return errs
}

func isQuarterStep(value decimal.Decimal) bool {
	return value.Mod(quarterStep).IsZero()
}
