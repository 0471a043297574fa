// Package checkout drives the address → slot → payment wizard that ends in a
// booking, and the payment handshake that follows an online booking.
package checkout

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/citycare/storefront/internal/addresses"
	"github.com/citycare/storefront/internal/cart"
	"github.com/citycare/storefront/pkg/checkout"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/enums"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
	"github.com/citycare/storefront/pkg/types"
)

// User-visible failure strings.
const (
	ErrMsgSlots         = "Failed to load time slots. Please try different address or date."
	ErrMsgPlaceOrder    = "Failed to place order. Please try again."
	ErrMsgCreateBooking = "Failed to create booking."
	ErrMsgInitPayment   = "Failed to initialize payment"
	ErrMsgVerifyPayment = "Payment verification failed. Please contact support."
	ErrMsgDismissed     = "Payment was not completed. Please try again."
	ErrMsgAddAddress    = "Failed to add address. Please try again."
)

// Customer is the signed-in user as checkout needs it.
type Customer struct {
	ID       int64
	FullName string
	Email    string
	PhoneNo  string
}

// Identity reports the current customer, false for guests.
type Identity func() (Customer, bool)

// Cart is the part of the cart store the wizard reads and clears.
type Cart interface {
	Lines() []cart.Line
	Total() money.Paisa
	ClearCart(ctx context.Context)
}

// AddressBook loads and saves the customer's addresses.
type AddressBook interface {
	List(ctx context.Context, userID int64) ([]types.Address, error)
	Create(ctx context.Context, userID int64, draft addresses.Draft) error
}

// Remote is the booking, payment and catalog API surface used by checkout.
type Remote interface {
	AvailableSlots(ctx context.Context, q citycare.SlotQuery) ([]types.TimeSlot, error)
	ScheduleCart(ctx context.Context, req citycare.ScheduleRequest) error
	CreateBookingFromCart(ctx context.Context, req citycare.CreateBookingRequest) (int64, error)
	CreatePaymentOrder(ctx context.Context, req citycare.PaymentOrderRequest) (*citycare.PaymentOrder, error)
	VerifyPayment(ctx context.Context, req citycare.PaymentVerification) error
	MenusGrouped(ctx context.Context, serviceID int64) ([]citycare.MenuGroup, error)
}

// Deps wires a Wizard.
type Deps struct {
	Identity  Identity
	Cart      Cart
	Addresses AddressBook
	Remote    Remote
	Gateway   *payments.Builder
	Config    config.CheckoutConfig
	Images    func(string) string
	Logger    *logger.Logger
	Now       func() time.Time
}

type selection struct {
	addressID     int64
	bookingType   enums.BookingType
	date          time.Time
	slot          *types.TimeSlot
	paymentMethod enums.PaymentMethod
	tip           money.Paisa
	coupon        *checkout.Coupon
	avoidCalling  bool
}

// Wizard is one device's checkout. The mutex guards memory only and is never
// held across a remote call. attempt ties an in-flight submit to the wizard
// generation that started it; slotSeq does the same for slot lookups.
type Wizard struct {
	mu sync.Mutex

	step       enums.WizardStep
	sel        selection
	addrs      []types.Address
	slots      []types.TimeSlot
	errMsg     string
	addressErr string
	bookingID  int64
	gateway    *payments.CheckoutOptions
	attempt    uint64
	slotSeq    uint64

	identity Identity
	cart     Cart
	book     AddressBook
	remote   Remote
	gw       *payments.Builder
	cfg      config.CheckoutConfig
	loc      *time.Location
	images   func(string) string
	logg     *logger.Logger
	now      func() time.Time
	shuffle  func([]Suggestion)
}

// NewWizard builds a wizard at the address step with default choices.
func NewWizard(deps Deps) (*Wizard, error) {
	if deps.Identity == nil {
		return nil, fmt.Errorf("checkout identity required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("checkout cart required")
	}
	if deps.Addresses == nil {
		return nil, fmt.Errorf("checkout address book required")
	}
	if deps.Remote == nil {
		return nil, fmt.Errorf("checkout remote required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("checkout payment gateway required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	w := &Wizard{
		identity: deps.Identity,
		cart:     deps.Cart,
		book:     deps.Addresses,
		remote:   deps.Remote,
		gw:       deps.Gateway,
		cfg:      deps.Config,
		loc:      deps.Config.Location(),
		images:   deps.Images,
		logg:     logg,
		now:      now,
		shuffle:  shuffleSuggestions,
	}
	w.resetLocked()
	return w, nil
}

func (w *Wizard) resetLocked() {
	w.step = enums.WizardStepAddress
	w.sel = selection{
		bookingType:   enums.BookingTypeScheduled,
		date:          startOfDay(w.now(), w.loc),
		paymentMethod: enums.PaymentMethodOnline,
	}
	w.slots = []types.TimeSlot{}
	w.errMsg = ""
	w.addressErr = ""
	w.bookingID = 0
	w.gateway = nil
	w.attempt++
	w.slotSeq++
}

// Reset discards the selection and any in-flight submit result.
func (w *Wizard) Reset() {
	w.mu.Lock()
	addrs := w.addrs
	w.resetLocked()
	w.addrs = addrs
	w.mu.Unlock()
}

// Open loads the customer's addresses, preselects the default one (else the
// first) and fetches slots for it. Guests get an unauthorized error.
func (w *Wizard) Open(ctx context.Context) error {
	customer, ok := w.identity()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	w.mu.Lock()
	if w.step == enums.WizardStepSuccess {
		w.resetLocked()
	}
	w.mu.Unlock()

	w.reloadAddresses(ctx, customer.ID)
	w.refreshSlots(ctx)
	return nil
}

func (w *Wizard) reloadAddresses(ctx context.Context, userID int64) {
	list, err := w.book.List(ctx, userID)
	if err != nil {
		w.logg.Error(ctx, "load checkout addresses failed", err)
		return
	}
	w.mu.Lock()
	w.addrs = list
	if picked := addresses.PickDefault(list); picked != 0 {
		w.sel.addressID = picked
	}
	w.mu.Unlock()
}

// SelectAddress picks the service location and moves on to slot selection.
func (w *Wizard) SelectAddress(ctx context.Context, addressID int64) error {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.findAddressLocked(addressID) == nil {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown address")
	}
	w.sel.addressID = addressID
	w.step = enums.WizardStepSlot
	w.mu.Unlock()

	w.refreshSlots(ctx)
	return nil
}

// SetBookingType switches between instant and scheduled. Instant synthesizes a
// slot for today and jumps to payment; scheduled clears the slot.
func (w *Wizard) SetBookingType(ctx context.Context, bt enums.BookingType) error {
	if !bt.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid booking type")
	}
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.sel.bookingType = bt
	if bt == enums.BookingTypeInstant {
		now := w.now()
		slot := instantSlot(now, w.cfg.InstantDelay, w.cfg.InstantDuration, w.loc)
		w.sel.slot = &slot
		w.sel.date = startOfDay(now, w.loc)
		w.step = enums.WizardStepPayment
		w.slotSeq++
		w.mu.Unlock()
		return nil
	}
	w.sel.slot = nil
	w.backToSlotLocked()
	w.mu.Unlock()

	w.refreshSlots(ctx)
	return nil
}

// SelectDate changes the booking day. Past days are rejected; the slot is cleared.
func (w *Wizard) SelectDate(ctx context.Context, raw string) error {
	day, err := time.ParseInLocation(types.DateLayout, raw, w.loc)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if day.Before(startOfDay(w.now(), w.loc)) {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "date is in the past")
	}
	w.sel.date = day
	w.sel.slot = nil
	w.backToSlotLocked()
	w.mu.Unlock()

	w.refreshSlots(ctx)
	return nil
}

// SelectSlot picks one of the offered slots and moves on to payment.
func (w *Wizard) SelectSlot(start string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	for _, s := range w.slots {
		if s.Start == start && s.Available {
			slot := s
			w.sel.slot = &slot
			w.step = enums.WizardStepPayment
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "slot not available")
}

// GoTo moves to a selection step. Backward moves are always allowed; forward
// moves need what the skipped steps would have collected.
func (w *Wizard) GoTo(step enums.WizardStep) error {
	if !step.IsSelection() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid step")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if len(w.cart.Lines()) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, checkout.MsgCartEmpty)
	}
	if step.Ordinal() <= w.step.Ordinal() {
		w.step = step
		return nil
	}
	if step.Ordinal() >= enums.WizardStepSlot.Ordinal() && w.sel.addressID == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "Please select an address.")
	}
	if step == enums.WizardStepPayment && w.sel.slot == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "Please select a time slot.")
	}
	w.step = step
	return nil
}

// SetPaymentMethod records online or pay-after.
func (w *Wizard) SetPaymentMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.paymentMethod = method
	return nil
}

// ToggleTip applies a preset tip, or clears it when that preset is active.
func (w *Wizard) ToggleTip(preset money.Paisa) error {
	known := false
	for _, p := range checkout.TipPresets {
		if p == preset {
			known = true
			break
		}
	}
	if !known {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown tip preset")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if w.sel.tip == preset {
		w.sel.tip = 0
	} else {
		w.sel.tip = preset
	}
	return nil
}

// SetCustomTip sets any non-negative tip.
func (w *Wizard) SetCustomTip(tip money.Paisa) error {
	if tip < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tip must not be negative")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.tip = tip
	return nil
}

// ApplyCoupon attaches a known code whose minimum order the cart meets.
func (w *Wizard) ApplyCoupon(code string) error {
	coupon, err := checkout.LookupCoupon(code)
	if err != nil {
		return err
	}
	if !coupon.Eligible(w.cart.Total()) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Add items worth %s to use this coupon", coupon.MinOrder))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.coupon = &coupon
	return nil
}

func (w *Wizard) RemoveCoupon() {
	w.mu.Lock()
	if w.editableLocked() == nil {
		w.sel.coupon = nil
	}
	w.mu.Unlock()
}

// SetAvoidCalling records the display preference.
func (w *Wizard) SetAvoidCalling(avoid bool) {
	w.mu.Lock()
	w.sel.avoidCalling = avoid
	w.mu.Unlock()
}

func (w *Wizard) ClearError() {
	w.mu.Lock()
	w.errMsg = ""
	w.addressErr = ""
	w.mu.Unlock()
}

// AddAddress saves a new address from the checkout form, reloads the list and
// reselects the default. A blank first line is ignored.
func (w *Wizard) AddAddress(ctx context.Context, draft addresses.Draft) error {
	customer, ok := w.identity()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if draft.FullName == "" {
		draft.FullName = customer.FullName
	}
	if draft.PhoneNo == "" {
		draft.PhoneNo = customer.PhoneNo
	}
	if err := w.book.Create(ctx, customer.ID, draft); err != nil {
		if stdErrors.Is(err, addresses.ErrLineRequired) {
			return nil
		}
		w.logg.Error(ctx, "add checkout address failed", err)
		w.mu.Lock()
		w.addressErr = ErrMsgAddAddress
		w.mu.Unlock()
		return nil
	}
	w.mu.Lock()
	w.addressErr = ""
	w.mu.Unlock()

	w.reloadAddresses(ctx, customer.ID)
	w.refreshSlots(ctx)
	return nil
}

// refreshSlots asks for slots when a scheduled booking has an address with
// coordinates; otherwise the list is emptied. A lookup overtaken by a newer
// selection change is dropped.
func (w *Wizard) refreshSlots(ctx context.Context) {
	w.mu.Lock()
	w.slotSeq++
	seq := w.slotSeq
	addr := w.findAddressLocked(w.sel.addressID)
	lines := w.cart.Lines()
	day := w.sel.date
	if w.sel.bookingType != enums.BookingTypeScheduled || addr == nil || !addr.HasCoordinates() || len(lines) == 0 {
		w.slots = []types.TimeSlot{}
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	serviceID := lines[0].ServiceID
	if serviceID == 0 {
		serviceID = 1
	}
	server, err := w.remote.AvailableSlots(ctx, citycare.SlotQuery{
		ServiceID:     serviceID,
		ServiceMenuID: lines[0].MenuID,
		BookingDate:   day.Format(types.DateLayout),
		Latitude:      addr.Latitude,
		Longitude:     addr.Longitude,
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.slotSeq {
		return
	}
	if err != nil {
		w.logg.Error(ctx, "load slots failed", err)
		w.errMsg = ErrMsgSlots
		w.slots = []types.TimeSlot{}
		return
	}
	grid := defaultGrid(w.cfg)
	if len(server) > 0 {
		grid = validSlots(server)
	}
	w.slots = offerable(grid, day, w.now(), w.cfg.SlotLeadTime, w.loc)
}

func validSlots(in []types.TimeSlot) []types.TimeSlot {
	out := make([]types.TimeSlot, 0, len(in))
	for _, s := range in {
		if s.Validate() == nil {
			out = append(out, s)
		}
	}
	return out
}

// editableLocked rejects selection changes while a submit owns the wizard.
func (w *Wizard) editableLocked() error {
	switch w.step {
	case enums.WizardStepSubmitting, enums.WizardStepAwaitingPayment:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is in progress")
	case enums.WizardStepSuccess:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking already placed")
	}
	return nil
}

// backToSlotLocked keeps the wizard from sitting at payment without a slot.
func (w *Wizard) backToSlotLocked() {
	if w.step.Ordinal() > enums.WizardStepSlot.Ordinal() {
		w.step = enums.WizardStepSlot
	}
}

func (w *Wizard) findAddressLocked(id int64) *types.Address {
	if id == 0 {
		return nil
	}
	for i := range w.addrs {
		if w.addrs[i].ID == id {
			a := w.addrs[i]
			return &a
		}
	}
	return nil
}

func (w *Wizard) breakdownLocked(itemTotal money.Paisa) checkout.Breakdown {
	return checkout.Price(itemTotal, money.Paisa(w.cfg.PlatformFeePaisa), w.sel.tip, w.sel.coupon)
}
