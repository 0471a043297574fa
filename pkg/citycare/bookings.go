package citycare

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/citycare/storefront/pkg/types"
)

// Booking is a confirmed service request.
type Booking struct {
	ID                 int64          `json:"id"`
	Status             string         `json:"status"`
	BookingDate        string         `json:"bookingDate"`
	TimeSlot           string         `json:"timeSlot"`
	PaymentStatus      string         `json:"paymentStatus,omitempty"`
	PaymentMode        string         `json:"paymentMode,omitempty"`
	FinalAmountInPaisa types.FlexInt  `json:"finalAmountInPaisa"`
	Vendor             *Vendor        `json:"vendor,omitempty"`
	Address            BookingAddress `json:"address"`
	ServiceMenus       []BookedMenu   `json:"serviceMenus"`
}

type Vendor struct {
	Name    string `json:"name"`
	PhoneNo string `json:"phoneNo"`
}

type BookingAddress struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city,omitempty"`
	Label        string `json:"label,omitempty"`
}

type BookedMenu struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Quantity         int           `json:"quantity"`
	BasePriceInPaisa types.FlexInt `json:"basePriceInPaisa"`
}

// CreateBookingRequest is step (b) of checkout submit.
type CreateBookingRequest struct {
	UserID        int64  `json:"userId"`
	ServiceID     int64  `json:"serviceId"`
	PaymentMethod string `json:"paymentMethod"`
}

// SlotQuery asks for available slots at a location.
type SlotQuery struct {
	ServiceID     int64
	ServiceMenuID int64
	BookingDate   string
	Latitude      float64
	Longitude     float64
}

// CreateBookingFromCart turns the scheduled cart into bookings and returns the
// first booking id. The id is zero when the API omits it.
func (c *Client) CreateBookingFromCart(ctx context.Context, req CreateBookingRequest) (int64, error) {
	var out struct {
		Bookings []struct {
			ID int64 `json:"id"`
		} `json:"bookings"`
	}
	err := c.do(ctx, request{
		endpoint: "bookings.from_cart",
		method:   http.MethodPost,
		path:     "bookings/from-cart",
		body:     req,
	}, expectData("create booking", &out))
	if err != nil {
		return 0, err
	}
	if len(out.Bookings) == 0 {
		return 0, nil
	}
	return out.Bookings[0].ID, nil
}

// Bookings lists the user's bookings. Anything other than a successful array
// reads as empty.
func (c *Client) Bookings(ctx context.Context, userID int64) ([]Booking, error) {
	var out []Booking
	err := c.do(ctx, request{
		endpoint: "bookings.list",
		method:   http.MethodGet,
		path:     "bookings",
		query:    url.Values{"userId": {strconv.FormatInt(userID, 10)}},
	}, expectData("bookings", &out))
	return emptyOnReject(out, err)
}

func (c *Client) Booking(ctx context.Context, bookingID int64) (*Booking, error) {
	var out Booking
	err := c.do(ctx, request{
		endpoint: "bookings.get",
		method:   http.MethodGet,
		path:     "bookings/" + idPath(bookingID),
	}, expectData("booking", &out))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBooking cancels and returns the API's message, if any.
func (c *Client) CancelBooking(ctx context.Context, bookingID, customerID int64, reason string) (string, error) {
	return c.messageCall(ctx, request{
		endpoint: "bookings.cancel",
		method:   http.MethodPost,
		path:     "bookings/" + idPath(bookingID, "cancel", customerID),
		body:     map[string]string{"reason": reason},
	})
}

// RescheduleBooking moves a booking and returns the API's message, if any.
func (c *Client) RescheduleBooking(ctx context.Context, bookingID, customerID int64, bookingDate, timeSlot string) (string, error) {
	return c.messageCall(ctx, request{
		endpoint: "bookings.reschedule",
		method:   http.MethodPut,
		path:     "bookings/" + idPath(bookingID, "reschedule", customerID),
		body:     map[string]string{"bookingDate": bookingDate, "timeSlot": timeSlot},
	})
}

// AvailableSlots asks the API which slots are open for a location and date.
func (c *Client) AvailableSlots(ctx context.Context, q SlotQuery) ([]types.TimeSlot, error) {
	var out []types.TimeSlot
	err := c.do(ctx, request{
		endpoint: "bookings.available_slots",
		method:   http.MethodGet,
		path:     "bookings/available-slots",
		query: url.Values{
			"serviceId":     {strconv.FormatInt(q.ServiceID, 10)},
			"serviceMenuId": {strconv.FormatInt(q.ServiceMenuID, 10)},
			"bookingDate":   {q.BookingDate},
			"latitude":      {strconv.FormatFloat(q.Latitude, 'f', -1, 64)},
			"longitude":     {strconv.FormatFloat(q.Longitude, 'f', -1, 64)},
		},
	}, decodeList("available slots", &out, false))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) messageCall(ctx context.Context, req request) (string, error) {
	var message string
	err := c.do(ctx, req, func(resp *response) error {
		env, err := parseEnvelope(req.endpoint, resp)
		if err != nil {
			return err
		}
		message = env.Message
		return nil
	})
	return message, err
}

// decodeList accepts any of the tolerated list shapes. Non-2xx responses are
// errors unless notFoundEmpty is set and the status is 404.
func decodeList[T any](endpoint string, dest *[]T, notFoundEmpty bool) func(*response) error {
	return func(resp *response) error {
		if notFoundEmpty && resp.status == http.StatusNotFound {
			*dest = []T{}
			return nil
		}
		if !resp.ok() {
			_, err := parseEnvelope(endpoint, resp)
			return err
		}
		*dest = tolerantList[T](resp.body)
		return nil
	}
}
