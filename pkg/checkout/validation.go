package checkout

import (
	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

// Messages shown when a submit is blocked before any remote call.
const (
	MsgSelectionIncomplete = "Please select both an address and a time slot to proceed."
	MsgCartEmpty           = "Your cart is empty."
)

// SubmissionInput is what must be known before a booking can be placed.
type SubmissionInput struct {
	UserID    int64
	AddressID int64
	HasSlot   bool
	LineCount int
}

// SubmissionViolation names one missing prerequisite.
type SubmissionViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateSubmission blocks a submit that lacks a user, address or slot, or
// whose cart is empty. The error message is the one shown to the customer.
func ValidateSubmission(in SubmissionInput) error {
	var violations []SubmissionViolation
	if in.UserID == 0 {
		violations = append(violations, SubmissionViolation{Field: "user", Reason: "login required"})
	}
	if in.AddressID == 0 {
		violations = append(violations, SubmissionViolation{Field: "address", Reason: "required"})
	}
	if !in.HasSlot {
		violations = append(violations, SubmissionViolation{Field: "slot", Reason: "required"})
	}
	if len(violations) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgSelectionIncomplete).WithDetails(map[string]any{
			"violations": violations,
		})
	}
	if in.LineCount == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgCartEmpty).WithDetails(map[string]any{
			"violations": []SubmissionViolation{{Field: "cart", Reason: "empty"}},
		})
	}
	return nil
}
