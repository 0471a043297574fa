// Package money keeps amounts in paisa and converts to rupees only for display
// and for the payment overlay.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Paisa is an amount in minor units (1/100 rupee).
type Paisa int64

var hundred = decimal.NewFromInt(100)

// FromRupees converts a whole-rupee amount into paisa.
func FromRupees(rupees int64) Paisa {
	return Paisa(rupees * 100)
}

// FromDecimal rounds a rupee amount to the nearest paisa.
func FromDecimal(rupees decimal.Decimal) Paisa {
	return Paisa(rupees.Mul(hundred).Round(0).IntPart())
}

// ParseRupees parses user input such as "250" or "99.50" into paisa.
func ParseRupees(raw string) (Paisa, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return FromDecimal(d), nil
}

// Rupees returns the amount as a decimal rupee value.
func (p Paisa) Rupees() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(hundred)
}

// Mul multiplies the amount by a quantity.
func (p Paisa) Mul(qty int) Paisa {
	return p * Paisa(qty)
}

// Percent returns pct percent of the amount, rounded to the nearest paisa.
func (p Paisa) Percent(pct int64) Paisa {
	return Paisa(decimal.NewFromInt(int64(p)).Mul(decimal.NewFromInt(pct)).Div(hundred).Round(0).IntPart())
}

// Min returns the smaller amount.
func Min(a, b Paisa) Paisa {
	if a < b {
		return a
	}
	return b
}

// String renders the amount as "₹924" or "₹99.50".
func (p Paisa) String() string {
	r := p.Rupees()
	if r.IsInteger() {
		return "₹" + r.StringFixed(0)
	}
	return "₹" + r.StringFixed(2)
}

// Amount is the JSON view of a paisa value shown to clients.
type Amount struct {
	Paisa  int64  `json:"paisa"`
	Rupees string `json:"rupees"`
	Label  string `json:"label"`
}

// View builds the JSON representation.
func (p Paisa) View() Amount {
	return Amount{Paisa: int64(p), Rupees: p.Rupees().StringFixed(2), Label: p.String()}
}

// MarshalJSON renders the amount in its display view.
func (p Paisa) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View())
}

// UnmarshalJSON accepts either a bare paisa number or the display view.
func (p *Paisa) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Paisa(n)
		return nil
	}
	var view Amount
	if err := json.Unmarshal(data, &view); err != nil {
		return fmt.Errorf("money: unsupported amount %s", string(data))
	}
	*p = Paisa(view.Paisa)
	return nil
}
