package lens

import (
	"fmt"
	"strings"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// FieldError names a single prescription field violation. Field is a dotted
// path such as "right_eye.axis".
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError aggregates every prescription rule violation found in one
// pass. Recoverable: the caller re-prompts with the field list.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "prescription invalid: " + strings.Join(parts, "; ")
}

// ViolationKind separates user-recoverable compatibility problems from
// catalog misconfiguration that must page an operator.
type ViolationKind string

const (
	ViolationCompatibility ViolationKind = "compatibility"
	ViolationReferenceData ViolationKind = "reference_data"
)

// Violation is a single compatibility or reference-data problem.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Subject string        `json:"subject"`
	Reason  string        `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Subject, v.Reason)
}

// CompatibilityError aggregates the violations found while resolving a
// configuration.
type CompatibilityError struct {
	Violations []Violation
}

func (e *CompatibilityError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "configuration incompatible: " + strings.Join(parts, "; ")
}

// HasReferenceDataViolation reports whether any violation points at broken
// catalog data rather than a user choice.
func (e *CompatibilityError) HasReferenceDataViolation() bool {
	for _, v := range e.Violations {
		if v.Kind == ViolationReferenceData {
			return true
		}
	}
	return false
}

// CurrencyMismatchError signals mixed currencies inside one configuration.
// The catalog should never offer them, so this is a hard failure.
type CurrencyMismatchError struct {
	Subject string
	Want    enums.Currency
	Got     enums.Currency
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch on %s: want %s, got %s", e.Subject, e.Want, e.Got)
}

// TransitionError rejects a wizard call made from the wrong step. The
// configuration is left untouched.
type TransitionError struct {
	Step   enums.ConfigStep
	Event  string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s from step %s: %s", e.Event, e.Step, e.Reason)
}
