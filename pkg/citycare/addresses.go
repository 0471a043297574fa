package citycare

import (
	"context"
	"net/http"

	"github.com/citycare/storefront/pkg/types"
)

// AddressInput is the create/update payload.
type AddressInput struct {
	UserID       int64   `json:"userId,omitempty"`
	FullName     string  `json:"fullName"`
	PhoneNo      string  `json:"phoneNo"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city,omitempty"`
	Pincode      string  `json:"pincode,omitempty"`
	Label        string  `json:"label"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Addresses lists saved addresses. Rejections and unknown shapes read as empty.
func (c *Client) Addresses(ctx context.Context, userID int64) ([]types.Address, error) {
	var out []types.Address
	err := c.do(ctx, request{
		endpoint: "addresses.list",
		method:   http.MethodGet,
		path:     "addresses/" + idPath(userID),
	}, decodeList("addresses", &out, false))
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, in AddressInput) error {
	return c.do(ctx, request{
		endpoint: "addresses.create",
		method:   http.MethodPost,
		path:     "addresses",
		body:     in,
	}, expectData("create address", nil))
}

func (c *Client) UpdateAddress(ctx context.Context, addressID int64, in AddressInput) error {
	in.UserID = 0
	return c.do(ctx, request{
		endpoint: "addresses.update",
		method:   http.MethodPatch,
		path:     "addresses/" + idPath(addressID),
		body:     in,
	}, expectData("update address", nil))
}

func (c *Client) DeleteAddress(ctx context.Context, addressID int64) error {
	return c.do(ctx, request{
		endpoint: "addresses.delete",
		method:   http.MethodDelete,
		path:     "addresses/" + idPath(addressID),
	}, expectData("delete address", nil))
}

func (c *Client) SetDefaultAddress(ctx context.Context, userID, addressID int64) error {
	return c.do(ctx, request{
		endpoint: "addresses.set_default",
		method:   http.MethodPatch,
		path:     "addresses/" + idPath(userID, addressID, "default"),
	}, expectData("set default address", nil))
}

// DefaultAddress returns the user's default address, or nil when none is set.
func (c *Client) DefaultAddress(ctx context.Context, userID int64) (*types.Address, error) {
	var out types.Address
	err := c.do(ctx, request{
		endpoint: "addresses.default",
		method:   http.MethodGet,
		path:     "addresses/" + idPath(userID, "default"),
	}, func(resp *response) error {
		if resp.status == http.StatusNotFound {
			return nil
		}
		return expectData("default address", &out)(resp)
	})
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}
