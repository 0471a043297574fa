// Package wallet shows a customer's wallet and runs gateway top-ups.
package wallet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
)

const (
	ErrMsgLoad     = "Failed to load wallet. Please try again."
	ErrMsgAmount   = "Please enter a valid amount greater than 0"
	ErrMsgInitiate = "Failed to initiate topup"
	ErrMsgVerify   = "Payment verification failed."
	ErrMsgPayment  = "Payment failed"
)

type Remote interface {
	WalletBalance(ctx context.Context, userID int64) (int64, error)
	WalletTransactions(ctx context.Context, userID int64) ([]citycare.WalletTransaction, error)
	CreateWalletTopup(ctx context.Context, userID, amountInPaisa int64) (*citycare.PaymentOrder, error)
	VerifyWalletTopup(ctx context.Context, userID int64, req citycare.PaymentVerification) error
}

type Gateway interface {
	Options(purpose payments.Purpose, order *citycare.PaymentOrder, requestedPaisa int64, prefill payments.Prefill) (*payments.CheckoutOptions, error)
}

// Transaction is a ledger entry ready for display.
type Transaction struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Credit      bool        `json:"credit"`
	Amount      money.Paisa `json:"amount"`
	Description string      `json:"description,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// Receipt confirms a finished top-up.
type Receipt struct {
	Added      money.Paisa `json:"added"`
	NewBalance money.Paisa `json:"newBalance"`
	At         time.Time   `json:"at"`
}

type pending struct {
	orderID string
	amount  money.Paisa
}

type Deps struct {
	Remote  Remote
	Gateway Gateway
	Logger  *logger.Logger
	Now     func() time.Time
}

// Purse is one device's wallet drawer.
type Purse struct {
	mu           sync.Mutex
	balance      money.Paisa
	transactions []Transaction
	pending      *pending
	options      *payments.CheckoutOptions
	receipt      *Receipt
	errMsg       string

	remote Remote
	gw     Gateway
	logg   *logger.Logger
	now    func() time.Time
}

func NewPurse(deps Deps) (*Purse, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("wallet remote required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	p := &Purse{
		transactions: []Transaction{},
		remote:       deps.Remote,
		gw:           deps.Gateway,
		logg:         deps.Logger,
		now:          deps.Now,
	}
	if p.logg == nil {
		p.logg = logger.Nop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Load fetches balance and transactions together. Either failing keeps the
// previous value for that half.
func (p *Purse) Load(ctx context.Context, userID int64) {
	var (
		balance int64
		txs     []citycare.WalletTransaction
		balErr  error
		txErr   error
	)
	var g errgroup.Group
	g.Go(func() error {
		balance, balErr = p.remote.WalletBalance(ctx, userID)
		return nil
	})
	g.Go(func() error {
		txs, txErr = p.remote.WalletTransactions(ctx, userID)
		return nil
	})
	_ = g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.errMsg = ""
	if balErr == nil {
		p.balance = money.Paisa(balance)
	} else {
		p.logg.Error(ctx, "load wallet balance failed", balErr)
		p.errMsg = ErrMsgLoad
	}
	if txErr == nil {
		p.transactions = toTransactions(txs)
	} else {
		p.logg.Error(ctx, "load wallet transactions failed", txErr)
		p.errMsg = ErrMsgLoad
	}
}

// StartTopup opens a gateway order for a rupee amount such as "250" or "99.50".
func (p *Purse) StartTopup(ctx context.Context, customer citycare.User, rawAmount string) (*payments.CheckoutOptions, error) {
	amount, err := money.ParseRupees(strings.TrimSpace(rawAmount))
	if err != nil || amount <= 0 {
		p.setError(ErrMsgAmount)
		return nil, errors.New(errors.CodeValidation, ErrMsgAmount)
	}
	ctx = p.logg.WithField(ctx, "amount_paisa", int64(amount))

	order, err := p.remote.CreateWalletTopup(ctx, customer.ID, int64(amount))
	if err != nil {
		p.logg.Error(ctx, "create wallet topup failed", err)
		p.setError(errors.UserMessage(err, ErrMsgInitiate))
		return nil, err
	}
	opts, err := p.gw.Options(payments.PurposeWalletTopup, order, int64(amount), payments.Prefill{
		Name:    customer.FullName,
		Email:   customer.Email,
		Contact: customer.PhoneNo,
	})
	if err != nil {
		p.logg.Error(ctx, "build topup gateway options failed", err)
		p.setError(ErrMsgInitiate)
		return nil, err
	}

	p.mu.Lock()
	p.pending = &pending{orderID: opts.OrderID, amount: amount}
	p.options = opts
	p.receipt = nil
	p.errMsg = ""
	p.mu.Unlock()
	return opts, nil
}

// Complete verifies the gateway callback for the pending top-up, then reads a
// fresh balance for the receipt and reloads the drawer.
func (p *Purse) Complete(ctx context.Context, userID int64, cb payments.Callback) (*Receipt, error) {
	if err := cb.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	pend := p.pending
	p.mu.Unlock()
	if pend == nil {
		return nil, errors.New(errors.CodeStateConflict, "no topup is pending")
	}
	if !strings.EqualFold(strings.TrimSpace(cb.OrderID), pend.orderID) {
		return nil, errors.New(errors.CodeValidation, "payment does not match the pending topup")
	}

	ctx = p.logg.WithField(ctx, "order_id", pend.orderID)
	if err := p.remote.VerifyWalletTopup(ctx, userID, cb.Verification(int64(pend.amount))); err != nil {
		p.logg.Error(ctx, "verify wallet topup failed", err)
		p.setError(errors.UserMessage(err, ErrMsgVerify))
		return nil, err
	}

	receipt := &Receipt{Added: pend.amount, At: p.now()}
	if balance, err := p.remote.WalletBalance(ctx, userID); err == nil {
		receipt.NewBalance = money.Paisa(balance)
	} else {
		p.logg.Warn(ctx, "fresh balance after topup unavailable")
	}

	p.mu.Lock()
	p.pending = nil
	p.options = nil
	p.receipt = receipt
	p.errMsg = ""
	p.mu.Unlock()
	p.logg.Info(ctx, "wallet topped up")

	p.Load(ctx, userID)
	out := *receipt
	return &out, nil
}

// Failed records the gateway's own failure description.
func (p *Purse) Failed(description string) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = ErrMsgPayment
	}
	p.mu.Lock()
	p.pending = nil
	p.options = nil
	p.errMsg = description
	p.mu.Unlock()
}

// View is the drawer as rendered to clients.
type View struct {
	Balance      money.Paisa               `json:"balance"`
	Transactions []Transaction             `json:"transactions"`
	Gateway      *payments.CheckoutOptions `json:"gateway,omitempty"`
	Receipt      *Receipt                  `json:"receipt,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

func (p *Purse) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := View{
		Balance:      p.balance,
		Transactions: append([]Transaction{}, p.transactions...),
		Gateway:      p.options,
		Error:        p.errMsg,
	}
	if p.receipt != nil {
		r := *p.receipt
		v.Receipt = &r
	}
	return v
}

func (p *Purse) Error() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

func (p *Purse) ClearError() {
	p.setError("")
}

// Reset forgets everything, used on logout.
func (p *Purse) Reset() {
	p.mu.Lock()
	p.balance = 0
	p.transactions = []Transaction{}
	p.pending = nil
	p.options = nil
	p.receipt = nil
	p.errMsg = ""
	p.mu.Unlock()
}

func (p *Purse) setError(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
}

func toTransactions(in []citycare.WalletTransaction) []Transaction {
	out := make([]Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, Transaction{
			ID:          t.ID.String(),
			Type:        t.Type,
			Credit:      t.IsCredit(),
			Amount:      money.Paisa(t.AmountInPaisa.Int64()),
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}
