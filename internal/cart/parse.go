package cart

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/types"
)

// ImageResolver maps a stored image path to a displayable URL.
type ImageResolver func(path string) string

type payloadKind int

const (
	payloadUnknown payloadKind = iota
	payloadFlat
	payloadNested
)

// payload is the decoded server cart: exactly one variant is set, or neither.
type payload struct {
	kind   payloadKind
	flat   []flatRow
	nested nestedCart
}

type flatRow struct {
	ID        int64         `json:"id"`
	MenuID    int64         `json:"menuId"`
	ServiceID types.FlexInt `json:"serviceId"`
	Quantity  int           `json:"quantity"`
	Menu      *struct {
		Title            string        `json:"title"`
		BasePriceInPaisa types.FlexInt `json:"basePriceInPaisa"`
		ImagePath        string        `json:"imagePath"`
	} `json:"menu"`
}

type nestedCart struct {
	ItemsByService []struct {
		Subcategories []struct {
			Item []nestedItem `json:"item"`
		} `json:"subcategories"`
	} `json:"itemsByService"`
}

type nestedItem struct {
	ID               int64         `json:"id"`
	ServiceMenuID    int64         `json:"serviceMenuId"`
	ServiceID        types.FlexInt `json:"serviceId"`
	Quantity         int           `json:"quantity"`
	ItemTotal        types.FlexInt `json:"itemTotal"`
	ServiceMenuTitle string        `json:"serviceMenuTitle"`
	ServiceMenuImage string        `json:"serviceMenuImage"`
	ServiceMenu      *struct {
		Name             string        `json:"name"`
		Description      string        `json:"description"`
		BasePriceInPaisa types.FlexInt `json:"basePriceInPaisa"`
		ImagePath        string        `json:"imagePath"`
	} `json:"serviceMenu"`
}

// decodePayload classifies raw as a flat row array or a nested itemsByService
// object, either optionally wrapped in {success, data}.
func decodePayload(raw []byte) payload {
	return decodeVariant(raw, true)
}

func decodeVariant(raw []byte, allowWrapper bool) payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return payload{}
	}
	switch raw[0] {
	case '[':
		var rows []flatRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return payload{}
		}
		return payload{kind: payloadFlat, flat: rows}
	case '{':
		var shape struct {
			Success        *bool           `json:"success"`
			Data           json.RawMessage `json:"data"`
			ItemsByService json.RawMessage `json:"itemsByService"`
		}
		if err := json.Unmarshal(raw, &shape); err != nil {
			return payload{}
		}
		if len(shape.ItemsByService) > 0 {
			var nested nestedCart
			if err := json.Unmarshal(raw, &nested); err != nil {
				return payload{}
			}
			return payload{kind: payloadNested, nested: nested}
		}
		if allowWrapper && len(shape.Data) > 0 {
			if shape.Success != nil && !*shape.Success {
				return payload{}
			}
			return decodeVariant(shape.Data, false)
		}
	}
	return payload{}
}

// Parse turns any server cart payload into lines. Unknown shapes yield an
// empty list, never an error.
func Parse(raw []byte, images ImageResolver) []Line {
	if images == nil {
		images = func(p string) string { return p }
	}
	p := decodePayload(raw)
	switch p.kind {
	case payloadFlat:
		return flatLines(p.flat, images)
	case payloadNested:
		return nestedLines(p.nested, images)
	default:
		return []Line{}
	}
}

func flatLines(rows []flatRow, images ImageResolver) []Line {
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		name := "Unknown Item"
		var price int64
		var image string
		if row.Menu != nil {
			name = row.Menu.Title
			price = row.Menu.BasePriceInPaisa.Int64()
			image = row.Menu.ImagePath
		}
		lines = append(lines, Line{
			Key:        lineKey(row.MenuID, row.ID),
			Name:       name,
			UnitPrice:  money.Paisa(price),
			Quantity:   row.Quantity,
			ImageURL:   images(image),
			MenuID:     row.MenuID,
			ServiceID:  row.ServiceID.Int64(),
			CartItemID: row.ID,
		})
	}
	return lines
}

func nestedLines(cart nestedCart, images ImageResolver) []Line {
	lines := []Line{}
	for _, group := range cart.ItemsByService {
		for _, sub := range group.Subcategories {
			for _, item := range sub.Item {
				lines = append(lines, nestedLine(item, images))
			}
		}
	}
	return lines
}

func nestedLine(item nestedItem, images ImageResolver) Line {
	name := item.ServiceMenuTitle
	image := item.ServiceMenuImage
	var price int64
	var description string
	if item.ServiceMenu != nil {
		if name == "" {
			name = item.ServiceMenu.Name
		}
		if image == "" {
			image = item.ServiceMenu.ImagePath
		}
		price = item.ServiceMenu.BasePriceInPaisa.Int64()
		description = item.ServiceMenu.Description
	}
	if name == "" {
		name = "Unknown"
	}
	if price == 0 && item.Quantity > 0 {
		price = item.ItemTotal.Int64() / int64(item.Quantity)
	}
	return Line{
		Key:         lineKey(item.ServiceMenuID, item.ID),
		Name:        name,
		UnitPrice:   money.Paisa(price),
		Quantity:    item.Quantity,
		ImageURL:    images(image),
		Description: description,
		MenuID:      item.ServiceMenuID,
		ServiceID:   item.ServiceID.Int64(),
		CartItemID:  item.ID,
	}
}

func lineKey(menuID, rowID int64) string {
	switch {
	case menuID != 0:
		return strconv.FormatInt(menuID, 10)
	case rowID != 0:
		return strconv.FormatInt(rowID, 10)
	default:
		return tempKeyPrefix + uuid.NewString()
	}
}
