// Package payments builds the options handed to the hosted payment overlay and
// validates the signed payload it calls back with. The overlay itself is an
// external actor; only its input and callback contract live here.
package payments

import (
	"strings"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

const defaultCurrency = "INR"

// Purpose selects the overlay branding.
type Purpose string

const (
	PurposeBooking     Purpose = "booking"
	PurposeWalletTopup Purpose = "wallet_topup"
)

// Prefill seeds the overlay's contact form.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// CheckoutOptions is what a client needs to open the overlay.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Builder turns remote payment orders into overlay options.
type Builder struct {
	cfg config.GatewayConfig
}

func NewBuilder(cfg config.GatewayConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Options maps an order onto overlay options. requestedPaisa is used when the
// order echoes no amount.
func (b *Builder) Options(purpose Purpose, order *citycare.PaymentOrder, requestedPaisa int64, prefill Prefill) (*CheckoutOptions, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedResponse, "payment order missing")
	}

	opts := &CheckoutOptions{
		Key:      firstNonEmpty(order.RazorpayKey, order.Key, b.cfg.FallbackKey),
		Amount:   firstPositive(order.AmountInPaisa.Int64(), order.Amount.Int64(), requestedPaisa),
		Currency: firstNonEmpty(order.Currency, b.cfg.Currency, defaultCurrency),
		OrderID:  firstNonEmpty(order.RazorpayOrderID.String(), order.ID.String()),
		Prefill:  prefill,
	}
	switch purpose {
	case PurposeWalletTopup:
		opts.Name = b.cfg.WalletName
		opts.Description = "Wallet Topup"
		opts.Theme.Color = b.cfg.WalletThemeColor
	default:
		opts.Name = b.cfg.BookingName
		opts.Description = "Service Booking"
		opts.Theme.Color = b.cfg.BookingThemeColor
	}

	if opts.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedResponse, "payment order missing id")
	}
	if opts.Key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway key not configured")
	}
	return opts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int64) int64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
