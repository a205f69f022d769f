package lens

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/pkg/enums"
)

// Configuration is the aggregate the wizard builds step by step. All
// transition methods are copy-on-write: they take the value, return a new
// value on success, and leave the input untouched on failure, so a caller
// that persists only on success gets atomic transitions for free.
type Configuration struct {
	ID                  uuid.UUID                 `json:"id"`
	CustomerID          uuid.UUID                 `json:"customer_id"`
	Step                enums.ConfigStep          `json:"step"`
	UsageType           *enums.LensUsageType      `json:"usage_type,omitempty"`
	Source              *enums.PrescriptionSource `json:"source,omitempty"`
	SavedPrescriptionID *uuid.UUID                `json:"saved_prescription_id,omitempty"`
	Prescription        *ValidatedPrescription    `json:"prescription,omitempty"`
	MaterialID          *string                   `json:"material_id,omitempty"`
	TreatmentIDs        []string                  `json:"treatment_ids,omitempty"`
	Pricing             *PricingBreakdown         `json:"pricing,omitempty"`
	IsComplete          bool                      `json:"is_complete"`
	CreatedAt           time.Time                 `json:"created_at"`
	ExpiresAt           time.Time                 `json:"expires_at"`
}

// NewConfiguration opens a fresh wizard session for the customer.
func NewConfiguration(id, customerID uuid.UUID, now time.Time, ttl time.Duration) Configuration {
	return Configuration{
		ID:         id,
		CustomerID: customerID,
		Step:       enums.StepUsageType,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Expired reports whether the configuration's caller-managed expiry passed.
func (c Configuration) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Machine evaluates wizard transitions against a catalog snapshot. It holds
// no mutable state and is safe for concurrent use.
type Machine struct {
	Rules    PrescriptionRules
	Snapshot Snapshot
}

// NewMachine builds a machine with the default prescription rules.
func NewMachine(snap Snapshot) Machine {
	return Machine{Rules: DefaultPrescriptionRules(), Snapshot: snap}
}

// SetUsageType starts or restarts the flow. Re-entering this step clears
// everything downstream, because compatibility may no longer hold. When the
// usage type needs no prescription the flow skips straight to material.
func (m Machine) SetUsageType(cfg Configuration, now time.Time, usage enums.LensUsageType) (Configuration, error) {
	if err := m.guard(cfg, now, "set_usage_type", enums.StepUsageType); err != nil {
		return cfg, err
	}

	option, ok := m.Snapshot.UsageOption(usage)
	if !ok || !option.Active {
		return cfg, &CompatibilityError{Violations: []Violation{{
			Kind:    ViolationReferenceData,
			Subject: "usage_type",
			Reason:  "usage type is not offered",
		}}}
	}

	next := cfg
	next.UsageType = &usage
	next.Source = nil
	next.SavedPrescriptionID = nil
	next.Prescription = nil
	next.MaterialID = nil
	next.TreatmentIDs = nil
	next.Pricing = nil
	next.IsComplete = false

	if option.RequiresPrescription {
		next.Step = enums.StepPrescription
	} else {
		next.Step = enums.StepMaterial
	}
	return next, nil
}

// SetPrescription validates and attaches a prescription. On validation
// failure the configuration stays on the prescription step untouched.
func (m Machine) SetPrescription(cfg Configuration, now time.Time, source enums.PrescriptionSource, p Prescription, savedID *uuid.UUID) (Configuration, error) {
	if err := m.guard(cfg, now, "set_prescription", enums.StepPrescription); err != nil {
		return cfg, err
	}
	if cfg.UsageType == nil {
		return cfg, &TransitionError{Step: cfg.Step, Event: "set_prescription", Reason: "usage type not chosen"}
	}
	if option, ok := m.Snapshot.UsageOption(*cfg.UsageType); ok && !option.RequiresPrescription {
		return cfg, &TransitionError{Step: cfg.Step, Event: "set_prescription", Reason: "usage type does not take a prescription"}
	}
	if !source.IsValid() {
		return cfg, &ValidationError{Fields: []FieldError{{Field: "source", Reason: "unknown prescription source"}}}
	}
	if source == enums.PrescriptionSourceSaved && savedID == nil {
		return cfg, &ValidationError{Fields: []FieldError{{Field: "saved_prescription_id", Reason: "required for saved prescriptions"}}}
	}

	validated, fieldErrs := m.Rules.Validate(p)
	if len(fieldErrs) > 0 {
		return cfg, &ValidationError{Fields: fieldErrs}
	}

	next := cfg
	next.Source = &source
	next.SavedPrescriptionID = savedID
	next.Prescription = &validated
	next.MaterialID = nil
	next.TreatmentIDs = nil
	next.Pricing = nil
	next.IsComplete = false
	next.Step = enums.StepMaterial
	return next, nil
}

// SetMaterial records the chosen material and advances to treatments.
func (m Machine) SetMaterial(cfg Configuration, now time.Time, materialID string) (Configuration, error) {
	if err := m.guard(cfg, now, "set_material", enums.StepMaterial); err != nil {
		return cfg, err
	}

	material, ok := m.Snapshot.Material(materialID)
	if !ok || !material.Active {
		return cfg, &CompatibilityError{Violations: []Violation{{
			Kind:    ViolationReferenceData,
			Subject: "material",
			Reason:  "material is not offered",
		}}}
	}

	next := cfg
	next.MaterialID = &materialID
	next.TreatmentIDs = nil
	next.Pricing = nil
	next.IsComplete = false
	next.Step = enums.StepTreatments
	return next, nil
}

// SetTreatments runs the compatibility resolver over the accumulated state.
// On failure the configuration stays on the treatments step untouched.
func (m Machine) SetTreatments(cfg Configuration, now time.Time, treatmentIDs []string) (Configuration, error) {
	if err := m.guard(cfg, now, "set_treatments", enums.StepTreatments); err != nil {
		return cfg, err
	}
	if cfg.UsageType == nil || cfg.MaterialID == nil {
		return cfg, &TransitionError{Step: cfg.Step, Event: "set_treatments", Reason: "usage type and material must be chosen first"}
	}

	if _, violations := Resolve(m.resolveInput(cfg, treatmentIDs), m.Snapshot); len(violations) > 0 {
		return cfg, &CompatibilityError{Violations: violations}
	}

	next := cfg
	next.TreatmentIDs = sortedUnique(treatmentIDs)
	next.Pricing = nil
	next.IsComplete = false
	next.Step = enums.StepReview
	return next, nil
}

// Complete prices the configuration and seals it. Calling it again on an
// already-complete configuration returns it unchanged with the stored
// breakdown rather than recomputing.
func (m Machine) Complete(cfg Configuration, now time.Time, discount decimal.Decimal) (Configuration, error) {
	if cfg.IsComplete && cfg.Pricing != nil {
		return cfg, nil
	}
	if cfg.Expired(now) {
		return cfg, &TransitionError{Step: cfg.Step, Event: "complete", Reason: "configuration expired"}
	}
	if cfg.Step != enums.StepReview {
		return cfg, &TransitionError{Step: cfg.Step, Event: "complete", Reason: "only a reviewed configuration can be completed"}
	}
	if cfg.UsageType == nil || cfg.MaterialID == nil {
		return cfg, &TransitionError{Step: cfg.Step, Event: "complete", Reason: "configuration is missing selections"}
	}

	resolved, violations := Resolve(m.resolveInput(cfg, cfg.TreatmentIDs), m.Snapshot)
	if len(violations) > 0 {
		return cfg, &CompatibilityError{Violations: violations}
	}

	breakdown, err := Price(resolved, discount)
	if err != nil {
		return cfg, err
	}

	next := cfg
	next.Pricing = &breakdown
	next.IsComplete = true
	next.Step = enums.StepComplete
	return next, nil
}

// Reopen jumps backward to a previously completed step, clearing everything
// strictly after it. This is the only way to mutate a complete configuration.
func (m Machine) Reopen(cfg Configuration, now time.Time, step enums.ConfigStep) (Configuration, error) {
	if cfg.Expired(now) {
		return cfg, &TransitionError{Step: cfg.Step, Event: "reopen", Reason: "configuration expired"}
	}
	if !step.IsValid() || step == enums.StepComplete || step == enums.StepReview {
		return cfg, &TransitionError{Step: cfg.Step, Event: "reopen", Reason: "cannot reopen to this step"}
	}
	if step.Ordinal() >= cfg.Step.Ordinal() && !cfg.IsComplete {
		return cfg, &TransitionError{Step: cfg.Step, Event: "reopen", Reason: "can only reopen a prior completed step"}
	}

	next := cfg
	next.Step = step
	next.Pricing = nil
	next.IsComplete = false

	switch step {
	case enums.StepUsageType:
		next.UsageType = nil
		next.Source = nil
		next.SavedPrescriptionID = nil
		next.Prescription = nil
		next.MaterialID = nil
		next.TreatmentIDs = nil
	case enums.StepPrescription:
		next.Source = nil
		next.SavedPrescriptionID = nil
		next.Prescription = nil
		next.MaterialID = nil
		next.TreatmentIDs = nil
	case enums.StepMaterial:
		next.MaterialID = nil
		next.TreatmentIDs = nil
	case enums.StepTreatments:
		next.TreatmentIDs = nil
	}
	return next, nil
}

// guard enforces the transition table: an event is legal on its own step, or
// as a backward jump from a later not-yet-complete step. Expired
// configurations fail closed.
func (m Machine) guard(cfg Configuration, now time.Time, event string, step enums.ConfigStep) error {
	if cfg.Expired(now) {
		return &TransitionError{Step: cfg.Step, Event: event, Reason: "configuration expired"}
	}
	if cfg.IsComplete || cfg.Step == enums.StepComplete {
		return &TransitionError{Step: cfg.Step, Event: event, Reason: "configuration is complete; reopen a step first"}
	}
	if cfg.Step.Ordinal() < step.Ordinal() {
		return &TransitionError{Step: cfg.Step, Event: event, Reason: "step not reached yet"}
	}
	return nil
}

func (m Machine) resolveInput(cfg Configuration, treatmentIDs []string) ResolveInput {
	input := ResolveInput{
		UsageType:       *cfg.UsageType,
		HasPrescription: cfg.Prescription != nil,
		MaterialID:      *cfg.MaterialID,
		TreatmentIDs:    treatmentIDs,
	}
	if cfg.Prescription != nil {
		input.RightAddPresent = cfg.Prescription.RightEye.Add != nil
		input.LeftAddPresent = cfg.Prescription.LeftEye.Add != nil
	}
	return input
}
