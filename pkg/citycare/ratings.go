package citycare

import (
	"context"
	"net/http"
)

// RatingRequest scores a completed booking. Sub-scores are optional.
type RatingRequest struct {
	Rating         int    `json:"rating"`
	ReviewText     string `json:"reviewText"`
	ServiceQuality *int   `json:"serviceQuality,omitempty"`
	Punctuality    *int   `json:"punctuality,omitempty"`
	ValueForMoney  *int   `json:"valueForMoney,omitempty"`
}

type Rating struct {
	ID             int64  `json:"id"`
	BookingID      int64  `json:"bookingId,omitempty"`
	Rating         int    `json:"rating"`
	ReviewText     string `json:"reviewText,omitempty"`
	ServiceQuality int    `json:"serviceQuality,omitempty"`
	Punctuality    int    `json:"punctuality,omitempty"`
	ValueForMoney  int    `json:"valueForMoney,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (c *Client) RateBooking(ctx context.Context, bookingID, customerID int64, req RatingRequest) error {
	return c.do(ctx, request{
		endpoint: "ratings.create",
		method:   http.MethodPost,
		path:     "ratings/booking/" + idPath(bookingID, "customer", customerID),
		body:     req,
	}, expectData("rate booking", nil))
}

func (c *Client) BookingRatings(ctx context.Context, bookingID int64) ([]Rating, error) {
	var out []Rating
	err := c.do(ctx, request{
		endpoint: "ratings.by_booking",
		method:   http.MethodGet,
		path:     "ratings/booking/" + idPath(bookingID),
	}, decodeList("booking ratings", &out, true))
	return out, err
}

func (c *Client) CustomerRatings(ctx context.Context, customerID int64) ([]Rating, error) {
	var out []Rating
	err := c.do(ctx, request{
		endpoint: "ratings.by_customer",
		method:   http.MethodGet,
		path:     "ratings/customer/" + idPath(customerID),
	}, decodeList("customer ratings", &out, true))
	return out, err
}
