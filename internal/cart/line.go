// Package cart keeps one device's cart: optimistic local mutations, server
// reconciliation for signed-in users and durable local storage for guests.
package cart

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/citycare/storefront/pkg/money"
)

const tempKeyPrefix = "temp-"

// Line is one quantity-adjustable entry in the cart.
type Line struct {
	Key         string      `json:"id"`
	Name        string      `json:"name"`
	UnitPrice   money.Paisa `json:"price"`
	Quantity    int         `json:"quantity"`
	ImageURL    string      `json:"image,omitempty"`
	Description string      `json:"description,omitempty"`
	MenuID      int64       `json:"menuId,omitempty"`
	ServiceID   int64       `json:"serviceId,omitempty"`
	CartItemID  int64       `json:"cartItemId,omitempty"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() money.Paisa {
	return l.UnitPrice.Mul(l.Quantity)
}

// remoteID is the id used for server updates and deletes: the cart row id,
// else the key read as an integer. Zero means the line has no server identity.
func (l Line) remoteID() int64 {
	if l.CartItemID != 0 {
		return l.CartItemID
	}
	return keyAsID(l.Key)
}

// Item is what a caller adds: a catalog menu without a quantity.
type Item struct {
	Name        string      `json:"name" validate:"required"`
	UnitPrice   money.Paisa `json:"price" validate:"gte=0"`
	ImageURL    string      `json:"image,omitempty"`
	Description string      `json:"description,omitempty"`
	MenuID      int64       `json:"menuId" validate:"gte=0"`
	ServiceID   int64       `json:"serviceId" validate:"gte=0"`
}

// Key derives the line key from the menu id, or a temporary key when unknown.
func (i Item) Key() string {
	if i.MenuID != 0 {
		return strconv.FormatInt(i.MenuID, 10)
	}
	return tempKeyPrefix + uuid.NewString()
}

func keyAsID(key string) int64 {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
