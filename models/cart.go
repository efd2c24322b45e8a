package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CartEntry is one slot of the storefront cart document.
//
// The cart service writes items as {"product_id": "42", "quantity": 2}. Older
// storefront documents use {"id": 42, "options": {...}}. Both decode here; a
// product id that is not a positive integer leaves ID at zero and the slot is
// ignored by the shaper.
type CartEntry struct {
	ID      int64       `json:"id"`
	Options CartOptions `json:"options"`
}

type cartEntryDoc struct {
	ID        int64           `json:"id"`
	ProductID json.RawMessage `json:"product_id"`
	Quantity  *int            `json:"quantity"`
	PriceID   *int            `json:"price_id"`
	Options   CartOptions     `json:"options"`
}

func (e *CartEntry) UnmarshalJSON(data []byte) error {
	var doc cartEntryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*e = CartEntry{ID: doc.ID, Options: doc.Options}
	if e.ID == 0 && len(doc.ProductID) > 0 {
		e.ID = parseProductID(doc.ProductID)
	}
	if e.Options.Quantity == nil {
		e.Options.Quantity = doc.Quantity
	}
	if e.Options.PriceID == nil {
		e.Options.PriceID = doc.PriceID
	}
	return nil
}

// parseProductID accepts a JSON string or number.
func parseProductID(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Cart is the cart document kept in Redis under cart:user:<id>.
type Cart struct {
	UserID    string      `json:"user_id"`
	Items     []CartEntry `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}
