package checkout

import (
	"github.com/citycare/storefront/internal/cart"
	"github.com/citycare/storefront/pkg/checkout"
	"github.com/citycare/storefront/pkg/enums"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
	"github.com/citycare/storefront/pkg/types"
)

// View is a snapshot of the wizard for rendering.
type View struct {
	Step          enums.WizardStep          `json:"step"`
	StepNumber    int                       `json:"stepNumber"`
	Lines         []cart.Line               `json:"lines"`
	Addresses     []types.Address           `json:"addresses"`
	AddressID     int64                     `json:"addressId,omitempty"`
	BookingType   enums.BookingType         `json:"bookingType"`
	Date          string                    `json:"date"`
	Slots         []types.TimeSlot          `json:"slots"`
	Slot          *types.TimeSlot           `json:"slot,omitempty"`
	PaymentMethod enums.PaymentMethod       `json:"paymentMethod"`
	TipPresets    []money.Paisa             `json:"tipPresets"`
	Coupon        *checkout.Coupon          `json:"coupon,omitempty"`
	Offers        []checkout.Coupon         `json:"offers"`
	AvoidCalling  bool                      `json:"avoidCalling"`
	Pricing       checkout.Breakdown        `json:"pricing"`
	Error         string                    `json:"error,omitempty"`
	AddressError  string                    `json:"addressError,omitempty"`
	BookingID     int64                     `json:"bookingId,omitempty"`
	Gateway       *payments.CheckoutOptions `json:"gateway,omitempty"`
}

// View renders the current state. An empty cart shows as the empty step
// unless a submit or its result owns the wizard.
func (w *Wizard) View() View {
	lines := w.cart.Lines()
	var itemTotal money.Paisa
	for _, l := range lines {
		itemTotal += l.Subtotal()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.step
	if len(lines) == 0 && step.IsSelection() {
		step = enums.WizardStepEmpty
	}
	v := View{
		Step:          step,
		StepNumber:    step.Ordinal(),
		Lines:         lines,
		Addresses:     append([]types.Address{}, w.addrs...),
		AddressID:     w.sel.addressID,
		BookingType:   w.sel.bookingType,
		Date:          w.sel.date.Format(types.DateLayout),
		Slots:         append([]types.TimeSlot{}, w.slots...),
		PaymentMethod: w.sel.paymentMethod,
		TipPresets:    checkout.TipPresets,
		Offers:        checkout.Coupons(),
		AvoidCalling:  w.sel.avoidCalling,
		Pricing:       w.breakdownLocked(itemTotal),
		Error:         w.errMsg,
		AddressError:  w.addressErr,
		BookingID:     w.bookingID,
		Gateway:       w.gateway,
	}
	if w.sel.slot != nil {
		s := *w.sel.slot
		v.Slot = &s
	}
	if w.sel.coupon != nil {
		c := *w.sel.coupon
		v.Coupon = &c
	}
	return v
}
