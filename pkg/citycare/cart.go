package citycare

import (
	"context"
	"encoding/json"
	"net/http"
)

// AddCartItemRequest adds a menu to the server cart.
type AddCartItemRequest struct {
	ServiceID     int64 `json:"serviceId"`
	ServiceMenuID int64 `json:"serviceMenuId"`
	Quantity      int   `json:"quantity"`
}

// ScheduleRequest pins address, date and slot onto the server cart.
type ScheduleRequest struct {
	UserID      int64  `json:"userId"`
	ServiceID   int64  `json:"serviceId"`
	BookingDate string `json:"bookingDate"`
	TimeSlot    string `json:"timeSlot"`
	AddressID   int64  `json:"addressId"`
}

// Cart returns the raw cart payload. Its shape varies (flat rows, nested
// itemsByService, optionally enveloped) so decoding is left to the caller.
func (c *Client) Cart(ctx context.Context, userID int64) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		endpoint: "cart.get",
		method:   http.MethodGet,
		path:     "cart/" + idPath(userID),
	}, func(resp *response) error {
		if !resp.ok() {
			return statusError("cart", resp)
		}
		raw = json.RawMessage(resp.body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) AddCartItem(ctx context.Context, userID int64, req AddCartItemRequest) error {
	return c.do(ctx, request{
		endpoint: "cart.add",
		method:   http.MethodPost,
		path:     "cart/" + idPath(userID),
		body:     req,
	}, expectData("add cart item", nil))
}

func (c *Client) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	return c.do(ctx, request{
		endpoint: "cart.update",
		method:   http.MethodPut,
		path:     "cart/" + idPath(userID, "items", itemID),
		body:     map[string]int{"quantity": quantity},
	}, expectData("update cart item", nil))
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	return c.do(ctx, request{
		endpoint: "cart.remove",
		method:   http.MethodDelete,
		path:     "cart/" + idPath(userID, "items", itemID),
	}, expectData("remove cart item", nil))
}

func (c *Client) ClearCart(ctx context.Context, userID int64) error {
	return c.do(ctx, request{
		endpoint: "cart.clear",
		method:   http.MethodDelete,
		path:     "cart/" + idPath(userID),
	}, expectData("clear cart", nil))
}

// ScheduleCart is step (a) of checkout submit.
func (c *Client) ScheduleCart(ctx context.Context, req ScheduleRequest) error {
	return c.do(ctx, request{
		endpoint: "cart.schedule",
		method:   http.MethodPut,
		path:     "cart/schedule",
		body:     req,
	}, expectData("schedule cart", nil))
}
