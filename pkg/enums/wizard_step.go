package enums

import "fmt"

// WizardStep is a state of the checkout wizard.
type WizardStep string

const (
	WizardStepEmpty           WizardStep = "empty"
	WizardStepAddress         WizardStep = "address"
	WizardStepSlot            WizardStep = "slot"
	WizardStepPayment         WizardStep = "payment"
	WizardStepSubmitting      WizardStep = "submitting"
	WizardStepAwaitingPayment WizardStep = "awaiting_payment"
	WizardStepSuccess         WizardStep = "success"
)

var validWizardSteps = []WizardStep{
	WizardStepEmpty,
	WizardStepAddress,
	WizardStepSlot,
	WizardStepPayment,
	WizardStepSubmitting,
	WizardStepAwaitingPayment,
	WizardStepSuccess,
}

// String implements fmt.Stringer.
func (w WizardStep) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WizardStep.
func (w WizardStep) IsValid() bool {
	for _, candidate := range validWizardSteps {
		if candidate == w {
			return true
		}
	}
	return false
}

// Ordinal is the position of the selection steps (1..3); other steps return 0.
func (w WizardStep) Ordinal() int {
	switch w {
	case WizardStepAddress:
		return 1
	case WizardStepSlot:
		return 2
	case WizardStepPayment:
		return 3
	}
	return 0
}

// IsSelection reports whether the customer can edit choices in this step.
func (w WizardStep) IsSelection() bool {
	return w.Ordinal() > 0
}

// ParseWizardStep converts raw input into a WizardStep.
func ParseWizardStep(value string) (WizardStep, error) {
	for _, candidate := range validWizardSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wizard step %q", value)
}
