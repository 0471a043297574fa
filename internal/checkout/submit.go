package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/citycare/storefront/pkg/checkout"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/enums"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
	"github.com/citycare/storefront/pkg/types"
)

// order is what a submit captured from the wizard when it started.
type order struct {
	attempt   uint64
	customer  Customer
	serviceID int64
	addressID int64
	date      string
	slot      types.TimeSlot
	method    enums.PaymentMethod
	payable   money.Paisa
}

// Submit places the booking: schedule the cart, create the booking, then either
// finish (pay after service) or open a payment order and wait for the gateway.
// Failures land in the error slot with the wizard back at payment. Only a
// submit that cannot start at all returns an error.
func (w *Wizard) Submit(ctx context.Context) error {
	customer, signedIn := w.identity()

	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	lines := w.cart.Lines()
	in := checkout.SubmissionInput{
		AddressID: w.sel.addressID,
		HasSlot:   w.sel.slot != nil,
		LineCount: len(lines),
	}
	if signedIn {
		in.UserID = customer.ID
	}
	if err := checkout.ValidateSubmission(in); err != nil {
		w.errMsg = pkgerrors.UserMessage(err, checkout.MsgSelectionIncomplete)
		w.mu.Unlock()
		return nil
	}

	serviceID := lines[0].ServiceID
	if serviceID == 0 {
		serviceID = 1
	}
	var itemTotal money.Paisa
	for _, l := range lines {
		itemTotal += l.Subtotal()
	}
	w.attempt++
	o := order{
		attempt:   w.attempt,
		customer:  customer,
		serviceID: serviceID,
		addressID: w.sel.addressID,
		date:      w.sel.date.Format(types.DateLayout),
		slot:      *w.sel.slot,
		method:    w.sel.paymentMethod,
		payable:   w.breakdownLocked(itemTotal).Payable,
	}
	w.step = enums.WizardStepSubmitting
	w.errMsg = ""
	w.gateway = nil
	w.mu.Unlock()

	ctx = w.logg.WithFields(ctx, map[string]any{
		"payment_method": o.method.String(),
		"service_id":     o.serviceID,
		"address_id":     o.addressID,
	})

	if err := w.remote.ScheduleCart(ctx, citycare.ScheduleRequest{
		UserID:      customer.ID,
		ServiceID:   o.serviceID,
		BookingDate: o.date,
		TimeSlot:    o.slot.Start,
		AddressID:   o.addressID,
	}); err != nil {
		w.fail(ctx, o, "schedule cart failed", err, pkgerrors.UserMessage(err, ErrMsgPlaceOrder))
		return nil
	}

	bookingID, err := w.remote.CreateBookingFromCart(ctx, citycare.CreateBookingRequest{
		UserID:        customer.ID,
		ServiceID:     o.serviceID,
		PaymentMethod: o.method.RemoteValue(),
	})
	if err != nil {
		msg := ErrMsgPlaceOrder
		if pkgerrors.IsCode(err, pkgerrors.CodeRemoteRejected) {
			msg = pkgerrors.UserMessage(err, ErrMsgCreateBooking)
		}
		w.fail(ctx, o, "create booking failed", err, msg)
		return nil
	}
	ctx = w.logg.WithField(ctx, "booking_id", bookingID)

	if o.method == enums.PaymentMethodAfter {
		w.cart.ClearCart(ctx)
		w.succeed(ctx, o, bookingID)
		return nil
	}

	payOrder, err := w.remote.CreatePaymentOrder(ctx, citycare.PaymentOrderRequest{
		AmountInPaisa: int64(o.payable),
		Receipt:       fmt.Sprintf("booking_%d_%d", customer.ID, w.now().UnixMilli()),
		ReferenceID:   bookingID,
	})
	if err != nil {
		w.fail(ctx, o, "create payment order failed", err, ErrMsgInitPayment)
		return nil
	}
	opts, err := w.gw.Options(payments.PurposeBooking, payOrder, int64(o.payable), payments.Prefill{
		Name:    customer.FullName,
		Email:   customer.Email,
		Contact: customer.PhoneNo,
	})
	if err != nil {
		w.fail(ctx, o, "build gateway options failed", err, ErrMsgInitPayment)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempt != o.attempt {
		return nil
	}
	w.step = enums.WizardStepAwaitingPayment
	w.bookingID = bookingID
	w.gateway = opts
	w.logg.Info(ctx, "awaiting payment")
	return nil
}

// PaymentCallback verifies the gateway's signed result for the pending booking
// and completes checkout. A verification failure returns the wizard to payment.
func (w *Wizard) PaymentCallback(ctx context.Context, cb payments.Callback) error {
	if err := cb.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	if w.step != enums.WizardStepAwaitingPayment || w.gateway == nil {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no payment is pending")
	}
	if !strings.EqualFold(strings.TrimSpace(cb.OrderID), w.gateway.OrderID) {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "payment does not match the pending order")
	}
	o := order{attempt: w.attempt}
	bookingID := w.bookingID
	w.step = enums.WizardStepSubmitting
	w.mu.Unlock()

	ctx = w.logg.WithField(ctx, "booking_id", bookingID)
	if err := w.remote.VerifyPayment(ctx, cb.Verification(0)); err != nil {
		w.fail(ctx, o, "verify payment failed", err, ErrMsgVerifyPayment)
		return nil
	}
	w.cart.ClearCart(ctx)
	w.succeed(ctx, o, bookingID)
	return nil
}

// PaymentDismissed handles the customer closing the gateway without paying.
func (w *Wizard) PaymentDismissed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != enums.WizardStepAwaitingPayment {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no payment is pending")
	}
	w.step = enums.WizardStepPayment
	w.gateway = nil
	w.errMsg = ErrMsgDismissed
	return nil
}

func (w *Wizard) fail(ctx context.Context, o order, msg string, err error, userMsg string) {
	w.logg.Error(ctx, msg, err)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempt != o.attempt {
		return
	}
	w.step = enums.WizardStepPayment
	w.gateway = nil
	w.errMsg = userMsg
}

// succeed ends the flow. The selection is discarded but the booking id stays
// visible until the wizard is reset or reopened.
func (w *Wizard) succeed(ctx context.Context, o order, bookingID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempt != o.attempt {
		return
	}
	addrs := w.addrs
	w.resetLocked()
	w.addrs = addrs
	w.step = enums.WizardStepSuccess
	w.bookingID = bookingID
	w.logg.Info(ctx, "booking placed")
}
