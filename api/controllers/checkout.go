package controllers

import (
	"context"
	"net/http"

	"github.com/citycare/storefront/api/middleware"
	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/api/validators"
	"github.com/citycare/storefront/internal/addresses"
	"github.com/citycare/storefront/internal/checkout"
	"github.com/citycare/storefront/pkg/enums"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
)

type selectAddressRequest struct {
	AddressID int64 `json:"addressId" validate:"required,gt=0"`
}

type bookingTypeRequest struct {
	BookingType string `json:"bookingType" validate:"required"`
}

type dateRequest struct {
	Date string `json:"date" validate:"required"`
}

type slotRequest struct {
	Start string `json:"start" validate:"required"`
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

type tipRequest struct {
	Preset *money.Paisa `json:"preset,omitempty"`
	Custom *money.Paisa `json:"custom,omitempty"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

type stepRequest struct {
	Step string `json:"step" validate:"required"`
}

type avoidCallingRequest struct {
	AvoidCalling bool `json:"avoidCalling"`
}

// wizardAction runs fn against the device's wizard and answers with the
// resulting view. fn errors are request errors; flow failures live in the view.
func wizardAction(logg *logger.Logger, fn func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		if fn != nil {
			if err := fn(r.Context(), state.Checkout, r); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, state.Checkout.View())
	}
}

func decodeInto[T any](r *http.Request) (T, error) {
	var payload T
	err := validators.DecodeJSONBody(r, &payload)
	return payload, err
}

func CheckoutGet(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, nil)
}

// CheckoutOpen enters the wizard: loads addresses and preselects the default.
func CheckoutOpen(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, _ *http.Request) error {
		return wz.Open(ctx)
	})
}

func CheckoutSelectAddress(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[selectAddressRequest](r)
		if err != nil {
			return err
		}
		return wz.SelectAddress(ctx, payload.AddressID)
	})
}

func CheckoutAddAddress(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error {
		draft, err := decodeInto[addresses.Draft](r)
		if err != nil {
			return err
		}
		return wz.AddAddress(ctx, draft)
	})
}

func CheckoutSetBookingType(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[bookingTypeRequest](r)
		if err != nil {
			return err
		}
		bt, err := enums.ParseBookingType(payload.BookingType)
		if err != nil {
			return fieldError(err, "bookingType")
		}
		return wz.SetBookingType(ctx, bt)
	})
}

func CheckoutSelectDate(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[dateRequest](r)
		if err != nil {
			return err
		}
		return wz.SelectDate(ctx, payload.Date)
	})
}

func CheckoutSelectSlot(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[slotRequest](r)
		if err != nil {
			return err
		}
		return wz.SelectSlot(payload.Start)
	})
}

func CheckoutSetPaymentMethod(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[paymentMethodRequest](r)
		if err != nil {
			return err
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			return fieldError(err, "paymentMethod")
		}
		return wz.SetPaymentMethod(method)
	})
}

// CheckoutSetTip toggles a preset tip or sets a custom one.
func CheckoutSetTip(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[tipRequest](r)
		if err != nil {
			return err
		}
		switch {
		case payload.Preset != nil && payload.Custom != nil:
			return pkgerrors.New(pkgerrors.CodeValidation, "choose either a preset or a custom tip")
		case payload.Preset != nil:
			return wz.ToggleTip(*payload.Preset)
		case payload.Custom != nil:
			return wz.SetCustomTip(*payload.Custom)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "tip amount is required")
	})
}

func CheckoutApplyCoupon(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[couponRequest](r)
		if err != nil {
			return err
		}
		return wz.ApplyCoupon(payload.Code)
	})
}

func CheckoutRemoveCoupon(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, _ *http.Request) error {
		wz.RemoveCoupon()
		return nil
	})
}

func CheckoutSetAvoidCalling(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[avoidCallingRequest](r)
		if err != nil {
			return err
		}
		wz.SetAvoidCalling(payload.AvoidCalling)
		return nil
	})
}

// CheckoutGoTo moves to another step; forward moves pass the step guards.
func CheckoutGoTo(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, r *http.Request) error {
		payload, err := decodeInto[stepRequest](r)
		if err != nil {
			return err
		}
		step, err := enums.ParseWizardStep(payload.Step)
		if err != nil {
			return fieldError(err, "step")
		}
		return wz.GoTo(step)
	})
}

// CheckoutSubmit places the booking. A failure that only filled the error slot
// is not replayed, so the client can retry with the same Idempotency-Key.
func CheckoutSubmit(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, _ *http.Request) error {
		if err := wz.Submit(ctx); err != nil {
			return err
		}
		if wz.View().Error != "" {
			middleware.SkipReplay(ctx)
		}
		return nil
	})
}

func CheckoutPaymentCallback(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(ctx context.Context, wz *checkout.Wizard, r *http.Request) error {
		cb, err := decodeInto[payments.Callback](r)
		if err != nil {
			return err
		}
		return wz.PaymentCallback(ctx, cb)
	})
}

func CheckoutPaymentDismiss(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, _ *http.Request) error {
		return wz.PaymentDismissed()
	})
}

func CheckoutClearError(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, _ *http.Request) error {
		wz.ClearError()
		return nil
	})
}

func CheckoutReset(logg *logger.Logger) http.HandlerFunc {
	return wizardAction(logg, func(_ context.Context, wz *checkout.Wizard, _ *http.Request) error {
		wz.Reset()
		return nil
	})
}

func CheckoutSuggestions(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := deviceState(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, state.Checkout.Suggestions(r.Context()))
	}
}

func fieldError(err error, field string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
		WithDetails(map[string]any{"field": field})
}
