package citycare

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/types"
)

// PaymentOrderRequest creates a gateway order for a booking.
type PaymentOrderRequest struct {
	AmountInPaisa int64  `json:"amountInPaisa"`
	Receipt       string `json:"receipt"`
	ReferenceID   int64  `json:"referenceId"`
}

// PaymentOrder is the gateway order as returned by the API. Field names vary
// between endpoints, so both spellings are kept.
type PaymentOrder struct {
	RazorpayKey     string           `json:"razorpayKey"`
	Key             string           `json:"key"`
	AmountInPaisa   types.FlexInt    `json:"amountInPaisa"`
	Amount          types.FlexInt    `json:"amount"`
	Currency        string           `json:"currency"`
	RazorpayOrderID types.FlexString `json:"razorpayOrderId"`
	ID              types.FlexString `json:"id"`
}

// PaymentVerification is the signed triple forwarded from the gateway callback.
type PaymentVerification struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
	AmountInPaisa     int64  `json:"amountInPaisa,omitempty"`
}

func (c *Client) CreatePaymentOrder(ctx context.Context, req PaymentOrderRequest) (*PaymentOrder, error) {
	var order PaymentOrder
	err := c.do(ctx, request{
		endpoint: "payments.create",
		method:   http.MethodPost,
		path:     "payments/create",
		body:     req,
	}, decodeOrder("create payment", &order))
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req PaymentVerification) error {
	return c.do(ctx, request{
		endpoint: "payments.verify",
		method:   http.MethodPost,
		path:     "payments/verify",
		body:     req,
	}, expectData("verify payment", nil))
}

// decodeOrder reads the order from data, or from the top level when data is absent.
func decodeOrder(endpoint string, dest *PaymentOrder) func(*response) error {
	return func(resp *response) error {
		env, err := parseEnvelope(endpoint, resp)
		if err != nil {
			return err
		}
		source := []byte(env.Data)
		if len(source) == 0 || string(source) == "null" {
			source = resp.body
		}
		if err := json.Unmarshal(source, dest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeMalformedResponse, err, "decode "+endpoint+" order")
		}
		return nil
	}
}
