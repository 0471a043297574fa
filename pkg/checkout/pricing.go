package checkout

import (
	"strings"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/money"
)

// TipPresets are the one-tap tip amounts.
var TipPresets = []money.Paisa{
	money.FromRupees(50),
	money.FromRupees(75),
	money.FromRupees(100),
}

// Coupon is a promotional code and its discount rule.
type Coupon struct {
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Percent     int64       `json:"percent,omitempty"`
	Flat        money.Paisa `json:"flat,omitempty"`
	Cap         money.Paisa `json:"cap,omitempty"`
	MinOrder    money.Paisa `json:"minOrder,omitempty"`
}

var coupons = []Coupon{
	{Code: "WELCOME25", Title: "Get 25% off upto 200", Description: "Valid on your first booking", Percent: 25, Cap: money.FromRupees(200)},
	{Code: "FIRST50", Title: "Get ₹50 coupon", Description: "On your first service", Flat: money.FromRupees(50)},
	{Code: "FLAT150", Title: "Flat ₹150 off", Description: "On orders above ₹999", Flat: money.FromRupees(150), MinOrder: money.FromRupees(999)},
}

// Coupons lists the offers in display order.
func Coupons() []Coupon {
	out := make([]Coupon, len(coupons))
	copy(out, coupons)
	return out
}

// LookupCoupon finds an offer by code, case-insensitively.
func LookupCoupon(code string) (Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid coupon code")
}

// Eligible reports whether the coupon applies to an item total.
func (c Coupon) Eligible(itemTotal money.Paisa) bool {
	return itemTotal > 0 && itemTotal >= c.MinOrder
}

// Discount is what the coupon takes off the item total.
func (c Coupon) Discount(itemTotal money.Paisa) money.Paisa {
	if !c.Eligible(itemTotal) {
		return 0
	}
	var off money.Paisa
	switch {
	case c.Percent > 0:
		off = itemTotal.Percent(c.Percent)
		if c.Cap > 0 {
			off = money.Min(off, c.Cap)
		}
	default:
		off = c.Flat
	}
	return money.Min(off, itemTotal)
}

// Breakdown is the bill shown at the payment step.
type Breakdown struct {
	ItemTotal money.Paisa `json:"itemTotal"`
	Fee       money.Paisa `json:"fee"`
	Tip       money.Paisa `json:"tip"`
	Discount  money.Paisa `json:"discount"`
	Payable   money.Paisa `json:"payable"`
}

// Price totals a bill. coupon may be nil.
func Price(itemTotal, fee, tip money.Paisa, coupon *Coupon) Breakdown {
	b := Breakdown{ItemTotal: itemTotal, Fee: fee, Tip: tip}
	if coupon != nil {
		b.Discount = coupon.Discount(itemTotal)
	}
	b.Payable = itemTotal + fee + tip - b.Discount
	if b.Payable < 0 {
		b.Payable = 0
	}
	return b
}
