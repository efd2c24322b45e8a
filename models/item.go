package models

import "github.com/shopspring/decimal"

// DownloadItem is a catalog item resolved for an analytics payload.
// It is computed on demand and never stored.
type DownloadItem struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	PriceID  *int
	Quantity int
	Category string
	SKU      *string
}

// Properties returns the item in the shape sent as event properties.
func (i DownloadItem) Properties() map[string]any {
	props := i.Trimmed()
	props["quantity"] = i.Quantity
	if i.PriceID != nil {
		props["price_id"] = *i.PriceID
	} else {
		props["price_id"] = nil
	}
	return props
}

// Trimmed returns the properties without quantity and price_id, as used for
// product views where no cart selection exists yet.
func (i DownloadItem) Trimmed() map[string]any {
	props := map[string]any{
		"id":       i.ID,
		"name":     i.Name,
		"price":    i.Price.InexactFloat64(),
		"category": i.Category,
	}
	if i.SKU != nil {
		props["sku"] = *i.SKU
	}
	return props
}
