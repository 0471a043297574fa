package payments

import (
	"strings"

	"github.com/citycare/storefront/pkg/citycare"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

// Callback is the signed triple the overlay reports on success.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// Validate rejects incomplete callbacks before anything is sent upstream.
func (c Callback) Validate() error {
	missing := map[string]string{}
	if strings.TrimSpace(c.PaymentID) == "" {
		missing["razorpay_payment_id"] = "required"
	}
	if strings.TrimSpace(c.OrderID) == "" {
		missing["razorpay_order_id"] = "required"
	}
	if strings.TrimSpace(c.Signature) == "" {
		missing["razorpay_signature"] = "required"
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "incomplete payment callback").WithDetails(missing)
	}
	return nil
}

// Verification builds the verify request. amountInPaisa is only sent for
// wallet top-ups; pass zero otherwise.
func (c Callback) Verification(amountInPaisa int64) citycare.PaymentVerification {
	return citycare.PaymentVerification{
		RazorpayOrderID:   strings.TrimSpace(c.OrderID),
		RazorpayPaymentID: strings.TrimSpace(c.PaymentID),
		RazorpaySignature: strings.TrimSpace(c.Signature),
		AmountInPaisa:     amountInPaisa,
	}
}
