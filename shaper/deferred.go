package shaper

import (
	"context"
	"fmt"
	"net/url"

	"analytics-service/deferred"
	"analytics-service/models"
	"analytics-service/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	formQuantity        = "edd_download_quantity"
	formQuantityByPrice = "edd_download_quantity_%d"
)

// BackfillQuantity fills options.Quantity from the submitted add-to-cart form
// when the cart action did not carry one. A quantity field for the chosen
// price option wins over the generic field; an empty or "0" generic field is
// ignored.
func BackfillQuantity(options models.CartOptions, form url.Values) models.CartOptions {
	if options.Quantity != nil || len(form) == 0 {
		return options
	}

	if v := form.Get(formQuantity); v != "" && v != "0" {
		q := absint(v)
		options.Quantity = &q
	}

	if options.PriceID != nil {
		if vs, ok := form[fmt.Sprintf(formQuantityByPrice, *options.PriceID)]; ok && len(vs) > 0 {
			q := absint(vs[0])
			options.Quantity = &q
		}
	}

	return options
}

// AddToCart stores the added item for the next render.
func (s *Shaper) AddToCart(ctx context.Context, store deferred.Store, downloadID int64, options models.CartOptions, form url.Values) {
	s.produce(ctx, store, models.EventAddedToCart, models.CartItemPayload{
		DownloadID: downloadID,
		Options:    BackfillQuantity(options, form),
	})
}

// RemoveFromCart stores the item in cart slot cartKey, with quantity 0, for
// the next render. It must run before the slot is removed. Missing slots are
// ignored.
func (s *Shaper) RemoveFromCart(ctx context.Context, store deferred.Store, cart repository.CartAccessor, cartKey int) {
	if cart == nil {
		return
	}
	entries, err := cart.CartContents(ctx)
	if err != nil {
		s.logger.Warn("Cart lookup failed", zap.Int("cart_key", cartKey), zap.Error(err))
		return
	}
	if cartKey < 0 || cartKey >= len(entries) || entries[cartKey].ID == 0 {
		return
	}

	entry := entries[cartKey]
	options := entry.Options
	zero := 0
	options.Quantity = &zero

	s.produce(ctx, store, models.EventRemovedFromCart, models.CartItemPayload{
		DownloadID: entry.ID,
		Options:    options,
	})
}

// CompletePurchase stores the payment id for the next render.
func (s *Shaper) CompletePurchase(ctx context.Context, store deferred.Store, paymentID int64) {
	s.produce(ctx, store, models.EventCompletedPurchase, models.PurchasePayload{PaymentID: paymentID})
}

// AddedToCart consumes a pending added_to_cart payload. Without one it
// returns def.
func (s *Shaper) AddedToCart(ctx context.Context, store deferred.Store, def models.NormalizedEvent) models.NormalizedEvent {
	var p models.CartItemPayload
	if !consume(ctx, store, models.EventAddedToCart, &p) {
		return def
	}

	return models.NormalizedEvent{
		Kind:       models.KindTrack,
		Name:       s.label("Added %s"),
		Properties: s.ResolveItem(ctx, p.DownloadID, p.Options).Properties(),
		EmitTag:    string(models.EventAddedToCart),
	}
}

// RemovedFromCart consumes a pending removed_from_cart payload. The emitted
// quantity is always 0.
func (s *Shaper) RemovedFromCart(ctx context.Context, store deferred.Store, def models.NormalizedEvent) models.NormalizedEvent {
	var p models.CartItemPayload
	if !consume(ctx, store, models.EventRemovedFromCart, &p) {
		return def
	}

	zero := 0
	p.Options.Quantity = &zero

	return models.NormalizedEvent{
		Kind:       models.KindTrack,
		Name:       s.label("Removed %s"),
		Properties: s.ResolveItem(ctx, p.DownloadID, p.Options).Properties(),
		EmitTag:    string(models.EventRemovedFromCart),
	}
}

// CompletedOrder consumes a pending completed_purchase payload and expands
// the payment into order properties.
func (s *Shaper) CompletedOrder(ctx context.Context, store deferred.Store, def models.NormalizedEvent) models.NormalizedEvent {
	var p models.PurchasePayload
	if !consume(ctx, store, models.EventCompletedPurchase, &p) {
		return def
	}

	ctx = repository.WithRowCache(ctx)
	id := p.PaymentID
	var errs []error
	str := lookup[string](&errs)
	money := func(d decimal.Decimal, err error) float64 {
		return lookup[decimal.Decimal](&errs)(d, err).InexactFloat64()
	}

	props := lookup[map[string]any](&errs)(s.orders.OrderMeta(ctx, id))
	if props == nil {
		props = make(map[string]any)
	}

	props["id"] = id
	props["key"] = str(s.orders.Key(ctx, id))
	props["payment_number"] = str(s.orders.Number(ctx, id))
	props["transaction_id"] = str(s.orders.TransactionID(ctx, id))
	props["subtotal"] = money(s.orders.Subtotal(ctx, id))
	props["total"] = money(s.orders.Total(ctx, id))
	props["tax"] = money(s.orders.Tax(ctx, id))
	props["currency"] = str(s.orders.Currency(ctx, id))
	props["gateway"] = str(s.orders.Gateway(ctx, id))

	userInfo, _ := props["user_info"].(map[string]any)
	if userInfo == nil {
		userInfo = make(map[string]any)
	}
	userInfo["ip"] = str(s.orders.BuyerIP(ctx, id))
	userInfo["customer_id"] = lookup[int64](&errs)(s.orders.CustomerID(ctx, id))
	userInfo["is_guest"] = lookup[bool](&errs)(s.orders.IsGuest(ctx, id))
	props["user_info"] = userInfo

	s.warnLookup("Order lookup failed", errs, zap.Int64("payment_id", id))

	return models.NormalizedEvent{
		Kind:       models.KindTrack,
		Name:       "Completed Order",
		Properties: props,
		EmitTag:    string(models.EventCompletedPurchase),
	}
}
