package configurator

import (
	"errors"

	"github.com/mexilux/optica-backend/internal/lens"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
)

// mapTransitionError translates the engine's typed failures into coded
// errors. Customer mistakes surface as validation or state conflicts with
// details attached; broken reference data and currency drift are server
// faults and stay opaque to the caller.
func mapTransitionError(err error) error {
	if err == nil {
		return nil
	}

	var validation *lens.ValidationError
	if errors.As(err, &validation) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "prescription failed validation").
			WithDetails(validation.Fields)
	}

	var compat *lens.CompatibilityError
	if errors.As(err, &compat) {
		if compat.HasReferenceDataViolation() {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog reference data is inconsistent")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "selection failed compatibility checks").
			WithDetails(compat.Violations)
	}

	var transition *lens.TransitionError
	if errors.As(err, &transition) {
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, transition.Reason).
			WithDetails(map[string]string{
				"step":  transition.Step.String(),
				"event": transition.Event,
			})
	}

	var currency *lens.CurrencyMismatchError
	if errors.As(err, &currency) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog currencies are inconsistent")
	}

	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition failed")
}
