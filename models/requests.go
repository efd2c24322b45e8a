package models

// AddToCartRequest is posted by the storefront after an item is added.
// PostData carries the raw urlencoded add-to-cart form, which is the only
// place a chosen quantity appears.
type AddToCartRequest struct {
	DownloadID int64       `json:"download_id" binding:"required,gt=0"`
	Options    CartOptions `json:"options"`
	PostData   string      `json:"post_data"`
}

// RemoveFromCartRequest is posted before the cart slot is removed.
type RemoveFromCartRequest struct {
	CartKey *int `json:"cart_key" binding:"required,gte=0"`
}

// CompletePurchaseRequest is posted once a payment completes.
type CompletePurchaseRequest struct {
	PaymentID int64 `json:"payment_id" binding:"required,gt=0"`
}

// EventsResponse lists what the current render should emit. Track is nil
// when no track event applies.
type EventsResponse struct {
	Page  NormalizedEvent  `json:"page"`
	Track *NormalizedEvent `json:"track"`
}
