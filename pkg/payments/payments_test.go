package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

func gatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		FallbackKey:       "rzp_fallback",
		Currency:          "INR",
		BookingName:       "City Care Connect",
		BookingThemeColor: "#0F172A",
		WalletName:        "City Cares Wallet",
		WalletThemeColor:  "#004e92",
	}
}

func TestBookingOptionsPreferRazorpayFields(t *testing.T) {
	b := NewBuilder(gatewayConfig())
	order := &citycare.PaymentOrder{
		RazorpayKey:     "rzp_live",
		Key:             "ignored",
		AmountInPaisa:   92400,
		Amount:          1,
		RazorpayOrderID: "order_rzp",
		ID:              "42",
	}
	opts, err := b.Options(PurposeBooking, order, 50000, Prefill{Name: "Asha", Contact: "9876543210"})
	require.NoError(t, err)

	assert.Equal(t, "rzp_live", opts.Key)
	assert.Equal(t, int64(92400), opts.Amount)
	assert.Equal(t, "order_rzp", opts.OrderID)
	assert.Equal(t, "INR", opts.Currency)
	assert.Equal(t, "City Care Connect", opts.Name)
	assert.Equal(t, "Service Booking", opts.Description)
	assert.Equal(t, "#0F172A", opts.Theme.Color)
	assert.Equal(t, "Asha", opts.Prefill.Name)
}

func TestWalletOptionsFallbacks(t *testing.T) {
	b := NewBuilder(gatewayConfig())
	opts, err := b.Options(PurposeWalletTopup, &citycare.PaymentOrder{ID: "order_2"}, 25000, Prefill{})
	require.NoError(t, err)

	assert.Equal(t, "rzp_fallback", opts.Key)
	assert.Equal(t, int64(25000), opts.Amount)
	assert.Equal(t, "order_2", opts.OrderID)
	assert.Equal(t, "City Cares Wallet", opts.Name)
	assert.Equal(t, "Wallet Topup", opts.Description)
	assert.Equal(t, "#004e92", opts.Theme.Color)
}

func TestOptionsRequireOrderID(t *testing.T) {
	_, err := NewBuilder(gatewayConfig()).Options(PurposeBooking, &citycare.PaymentOrder{Amount: 100}, 100, Prefill{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMalformedResponse))

	_, err = NewBuilder(gatewayConfig()).Options(PurposeBooking, nil, 100, Prefill{})
	assert.Error(t, err)
}

func TestCallbackValidation(t *testing.T) {
	err := Callback{PaymentID: "pay_1", OrderID: " "}.Validate()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"razorpay_order_id":  "required",
		"razorpay_signature": "required",
	}, typed.Details())

	cb := Callback{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"}
	require.NoError(t, cb.Validate())
	v := cb.Verification(5000)
	assert.Equal(t, "order_1", v.RazorpayOrderID)
	assert.Equal(t, "pay_1", v.RazorpayPaymentID)
	assert.Equal(t, "sig", v.RazorpaySignature)
	assert.Equal(t, int64(5000), v.AmountInPaisa)
}
