// Package bookings lists a customer's bookings and applies cancel, reschedule
// and rating actions to them.
package bookings

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/enums"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/types"
)

const (
	ErrMsgLoad       = "Failed to load bookings. Please try again."
	ErrMsgCancel     = "Failed to cancel booking."
	ErrMsgReschedule = "Failed to reschedule booking."
	ErrMsgRate       = "Failed to submit rating. Please try again."

	minRating = 1
	maxRating = 5
)

type Remote interface {
	Bookings(ctx context.Context, userID int64) ([]citycare.Booking, error)
	Booking(ctx context.Context, bookingID int64) (*citycare.Booking, error)
	CancelBooking(ctx context.Context, bookingID, customerID int64, reason string) (string, error)
	RescheduleBooking(ctx context.Context, bookingID, customerID int64, bookingDate, timeSlot string) (string, error)
	RateBooking(ctx context.Context, bookingID, customerID int64, req citycare.RatingRequest) error
	BookingRatings(ctx context.Context, bookingID int64) ([]citycare.Rating, error)
}

// Card is a booking as listed in the bookings drawer.
type Card struct {
	ID            int64                   `json:"id"`
	Label         string                  `json:"label"`
	Status        enums.BookingStatus     `json:"status"`
	BookingDate   string                  `json:"bookingDate"`
	TimeSlot      string                  `json:"timeSlot"`
	PaymentStatus string                  `json:"paymentStatus,omitempty"`
	PaymentMode   string                  `json:"paymentMode,omitempty"`
	Amount        money.Paisa             `json:"amount"`
	Vendor        *citycare.Vendor        `json:"vendor,omitempty"`
	Address       citycare.BookingAddress `json:"address"`
	Menus         []citycare.BookedMenu   `json:"menus"`
	CanModify     bool                    `json:"canModify"`
	CanRate       bool                    `json:"canRate"`
}

// Rating is a customer's score for a completed booking.
type Rating struct {
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText     string `json:"reviewText"`
	ServiceQuality *int   `json:"serviceQuality,omitempty" validate:"omitempty,min=1,max=5"`
	Punctuality    *int   `json:"punctuality,omitempty" validate:"omitempty,min=1,max=5"`
	ValueForMoney  *int   `json:"valueForMoney,omitempty" validate:"omitempty,min=1,max=5"`
}

type Deps struct {
	Remote   Remote
	Logger   *logger.Logger
	Location *time.Location
	Now      func() time.Time
}

// Desk is one device's bookings drawer. Listing and actions keep separate
// error slots so a failed action leaves the loaded list alone.
type Desk struct {
	mu        sync.Mutex
	cards     []Card
	errMsg    string
	actionErr string

	remote Remote
	logg   *logger.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewDesk(deps Deps) (*Desk, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("bookings remote required")
	}
	d := &Desk{
		cards:  []Card{},
		remote: deps.Remote,
		logg:   deps.Logger,
		loc:    deps.Location,
		now:    deps.Now,
	}
	if d.logg == nil {
		d.logg = logger.Nop()
	}
	if d.loc == nil {
		d.loc = time.UTC
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Load refreshes the list, newest first as the API returns it.
func (d *Desk) Load(ctx context.Context, userID int64) []Card {
	d.mu.Lock()
	d.errMsg = ""
	d.mu.Unlock()

	list, err := d.remote.Bookings(ctx, userID)
	if err != nil {
		d.logg.Error(ctx, "load bookings failed", err)
		d.mu.Lock()
		d.errMsg = ErrMsgLoad
		d.mu.Unlock()
		return d.Cards()
	}

	cards := make([]Card, 0, len(list))
	for i, b := range list {
		c := toCard(b)
		c.Label = fmt.Sprintf("Booking #%d", len(list)-i)
		cards = append(cards, c)
	}
	d.mu.Lock()
	d.cards = cards
	d.mu.Unlock()
	return d.Cards()
}

func (d *Desk) Detail(ctx context.Context, bookingID int64) (Card, error) {
	b, err := d.remote.Booking(ctx, bookingID)
	if err != nil {
		return Card{}, err
	}
	c := toCard(*b)
	c.Label = fmt.Sprintf("Booking #%d", b.ID)
	return c, nil
}

// Cancel needs a non-blank reason and a booking that is still open.
func (d *Desk) Cancel(ctx context.Context, userID, bookingID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.New(errors.CodeValidation, "cancellation reason is required")
	}
	if err := d.guard(bookingID, enums.BookingStatus.CanModify, "booking can no longer be cancelled"); err != nil {
		return err
	}
	ctx = d.logg.WithField(ctx, "booking_id", bookingID)
	if _, err := d.remote.CancelBooking(ctx, bookingID, userID, reason); err != nil {
		return d.failAction(ctx, "cancel booking failed", err, ErrMsgCancel)
	}
	d.logg.Info(ctx, "booking cancelled")
	d.afterAction(ctx, userID)
	return nil
}

func (d *Desk) Reschedule(ctx context.Context, userID, bookingID int64, date, slot string) error {
	date = strings.TrimSpace(date)
	slot = strings.TrimSpace(slot)
	if date == "" || slot == "" {
		return errors.New(errors.CodeValidation, "date and time slot are required")
	}
	day, err := time.ParseInLocation(types.DateLayout, date, d.loc)
	if err != nil {
		return errors.New(errors.CodeValidation, "invalid booking date")
	}
	if _, err := time.Parse(types.SlotLayout, slot); err != nil {
		return errors.New(errors.CodeValidation, "invalid time slot")
	}
	if day.Before(startOfDay(d.now().In(d.loc))) {
		return errors.New(errors.CodeValidation, "date cannot be in the past")
	}
	if err := d.guard(bookingID, enums.BookingStatus.CanModify, "booking can no longer be rescheduled"); err != nil {
		return err
	}
	ctx = d.logg.WithField(ctx, "booking_id", bookingID)
	if _, err := d.remote.RescheduleBooking(ctx, bookingID, userID, date, slot); err != nil {
		return d.failAction(ctx, "reschedule booking failed", err, ErrMsgReschedule)
	}
	d.logg.Info(ctx, "booking rescheduled")
	d.afterAction(ctx, userID)
	return nil
}

// Rate scores a completed booking. Scores outside 1..5 are rejected locally.
func (d *Desk) Rate(ctx context.Context, userID, bookingID int64, r Rating) error {
	for _, score := range []*int{&r.Rating, r.ServiceQuality, r.Punctuality, r.ValueForMoney} {
		if score != nil && (*score < minRating || *score > maxRating) {
			return errors.New(errors.CodeValidation, "ratings must be between 1 and 5")
		}
	}
	if err := d.guard(bookingID, enums.BookingStatus.CanRate, "only completed bookings can be rated"); err != nil {
		return err
	}
	ctx = d.logg.WithField(ctx, "booking_id", bookingID)
	err := d.remote.RateBooking(ctx, bookingID, userID, citycare.RatingRequest{
		Rating:         r.Rating,
		ReviewText:     strings.TrimSpace(r.ReviewText),
		ServiceQuality: r.ServiceQuality,
		Punctuality:    r.Punctuality,
		ValueForMoney:  r.ValueForMoney,
	})
	if err != nil {
		d.logg.Error(ctx, "rate booking failed", err)
		d.mu.Lock()
		d.actionErr = ErrMsgRate
		d.mu.Unlock()
		return errors.Wrap(errors.CodeDependency, err, ErrMsgRate)
	}
	d.afterAction(ctx, userID)
	return nil
}

func (d *Desk) Ratings(ctx context.Context, bookingID int64) ([]citycare.Rating, error) {
	list, err := d.remote.BookingRatings(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []citycare.Rating{}
	}
	return list, nil
}

func (d *Desk) Cards() []Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Desk) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

func (d *Desk) ActionError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.actionErr
}

func (d *Desk) ClearErrors() {
	d.mu.Lock()
	d.errMsg = ""
	d.actionErr = ""
	d.mu.Unlock()
}

// Reset forgets the loaded list, used on logout.
func (d *Desk) Reset() {
	d.mu.Lock()
	d.cards = []Card{}
	d.errMsg = ""
	d.actionErr = ""
	d.mu.Unlock()
}

// guard checks the booking's listed status when it is loaded; unknown
// bookings are left for the API to judge.
func (d *Desk) guard(bookingID int64, allowed func(enums.BookingStatus) bool, msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.cards {
		if c.ID == bookingID && !allowed(c.Status) {
			return errors.New(errors.CodeStateConflict, msg)
		}
	}
	return nil
}

func (d *Desk) failAction(ctx context.Context, op string, err error, fallback string) error {
	d.logg.Error(ctx, op, err)
	msg := errors.UserMessage(err, fallback)
	d.mu.Lock()
	d.actionErr = msg
	d.mu.Unlock()
	if errors.As(err) != nil {
		return err
	}
	return errors.Wrap(errors.CodeDependency, err, msg)
}

func (d *Desk) afterAction(ctx context.Context, userID int64) {
	d.mu.Lock()
	d.actionErr = ""
	d.mu.Unlock()
	d.Load(ctx, userID)
}

func toCard(b citycare.Booking) Card {
	status := enums.NormalizeBookingStatus(b.Status)
	menus := b.ServiceMenus
	if menus == nil {
		menus = []citycare.BookedMenu{}
	}
	return Card{
		ID:            b.ID,
		Status:        status,
		BookingDate:   b.BookingDate,
		TimeSlot:      b.TimeSlot,
		PaymentStatus: b.PaymentStatus,
		PaymentMode:   b.PaymentMode,
		Amount:        money.Paisa(b.FinalAmountInPaisa.Int64()),
		Vendor:        b.Vendor,
		Address:       b.Address,
		Menus:         menus,
		CanModify:     status.CanModify(),
		CanRate:       status.CanRate(),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
