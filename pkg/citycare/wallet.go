package citycare

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/types"
)

// WalletTransaction is one ledger entry.
type WalletTransaction struct {
	ID            types.FlexString `json:"id"`
	Type          string           `json:"type"`
	AmountInPaisa types.FlexInt    `json:"amountInPaisa"`
	Description   string           `json:"description,omitempty"`
	CreatedAt     string           `json:"createdAt,omitempty"`
}

// IsCredit reports whether the entry adds money to the wallet.
func (t WalletTransaction) IsCredit() bool {
	switch t.Type {
	case "CREDIT", "TOPUP", "REFUND":
		return true
	}
	return false
}

// WalletBalance returns the balance in paisa. A missing wallet is a zero balance.
func (c *Client) WalletBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := c.do(ctx, request{
		endpoint: "wallet.balance",
		method:   http.MethodGet,
		path:     "wallets/" + idPath(userID, "balance"),
	}, func(resp *response) error {
		if resp.status == http.StatusNotFound {
			return nil
		}
		env, err := parseEnvelope("wallet balance", resp)
		if err != nil {
			return err
		}
		var shape struct {
			BalanceInPaisa *types.FlexInt `json:"balanceInPaisa"`
		}
		if err := json.Unmarshal(resp.body, &shape); err == nil && shape.BalanceInPaisa != nil {
			balance = shape.BalanceInPaisa.Int64()
			return nil
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &shape); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeMalformedResponse, err, "decode wallet balance")
			}
			if shape.BalanceInPaisa != nil {
				balance = shape.BalanceInPaisa.Int64()
			}
		}
		return nil
	})
	return balance, err
}

// WalletTransactions lists ledger entries. A missing wallet has none.
func (c *Client) WalletTransactions(ctx context.Context, userID int64) ([]WalletTransaction, error) {
	var out []WalletTransaction
	err := c.do(ctx, request{
		endpoint: "wallet.transactions",
		method:   http.MethodGet,
		path:     "wallets/" + idPath(userID, "transactions"),
	}, decodeList("wallet transactions", &out, true))
	return out, err
}

func (c *Client) CreateWalletTopup(ctx context.Context, userID, amountInPaisa int64) (*PaymentOrder, error) {
	var order PaymentOrder
	err := c.do(ctx, request{
		endpoint: "wallet.topup_create",
		method:   http.MethodPost,
		path:     "wallets/" + idPath(userID, "topup", "create"),
		body:     map[string]int64{"amountInPaisa": amountInPaisa},
	}, decodeOrder("create topup", &order))
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) VerifyWalletTopup(ctx context.Context, userID int64, req PaymentVerification) error {
	return c.do(ctx, request{
		endpoint: "wallet.topup_verify",
		method:   http.MethodPost,
		path:     "wallets/" + idPath(userID, "topup", "verify"),
		body:     req,
	}, expectData("verify topup", nil))
}
