package shaper_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"analytics-service/deferred"
	"analytics-service/hooks"
	"analytics-service/models"
	"analytics-service/shaper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newShaper(t *testing.T) (*shaper.Shaper, *mockCatalog) {
	t.Helper()
	catalog := newMockCatalog()
	return shaper.New(catalog, newMockOrders(), "", zap.NewNop()), catalog
}

func newStore() deferred.Store {
	return deferred.NewMemoryStore(time.Minute).ForVisitor("visitor-1")
}

var defaultTrack = models.NormalizedEvent{}

func TestResolveItem_QuantityPresenceBeatsDefault(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()

	item := s.ResolveItem(ctx, 42, models.CartOptions{Quantity: intPtr(0)})
	assert.Equal(t, 0, item.Quantity)

	item = s.ResolveItem(ctx, 42, models.CartOptions{})
	assert.Equal(t, 1, item.Quantity)
	assert.Nil(t, item.PriceID)
	assert.Nil(t, item.Properties()["price_id"])
}

func TestResolveItem_Pricing(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()

	item := s.ResolveItem(ctx, 42, models.CartOptions{PriceID: intPtr(2)})
	assert.Equal(t, 99.0, item.Price.InexactFloat64())
	assert.Equal(t, 2, *item.PriceID)

	item = s.ResolveItem(ctx, 42, models.CartOptions{})
	assert.Equal(t, 49.0, item.Price.InexactFloat64())

	// price_id on a single-price item falls back to the base price
	item = s.ResolveItem(ctx, 7, models.CartOptions{PriceID: intPtr(1)})
	assert.Equal(t, 5.0, item.Price.InexactFloat64())
}

func TestResolveItem_CategoryNameAndSKU(t *testing.T) {
	s, catalog := newShaper(t)
	ctx := context.Background()

	item := s.ResolveItem(ctx, 42, models.CartOptions{})
	assert.Equal(t, "Themes, Blogging", item.Category)
	assert.Equal(t, "Theme Pro", item.Name)
	assert.Nil(t, item.SKU)
	_, hasSKU := item.Properties()["sku"]
	assert.False(t, hasSKU)

	item = s.ResolveItem(ctx, 7, models.CartOptions{})
	assert.Equal(t, "", item.Category)
	assert.Equal(t, "Icon pack", item.Name)

	catalog.usesSKU = true
	item = s.ResolveItem(ctx, 42, models.CartOptions{})
	require.NotNil(t, item.SKU)
	assert.Equal(t, "THEME-PRO", item.Properties()["sku"])
}

func TestResolveItem_UnknownItemDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := shaper.New(newMockCatalog(), newMockOrders(), "", zap.New(core))

	item := s.ResolveItem(context.Background(), 999, models.CartOptions{})
	assert.Equal(t, int64(999), item.ID)
	assert.True(t, item.Price.IsZero())
	assert.Equal(t, "", item.Name)
	assert.Equal(t, "", item.Category)
	assert.Equal(t, 1, item.Quantity)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Catalog lookup failed", logs.All()[0].Message)
}

func TestBackfillQuantity(t *testing.T) {
	tests := []struct {
		name    string
		options models.CartOptions
		form    url.Values
		want    *int
	}{
		{
			name:    "explicit quantity kept",
			options: models.CartOptions{Quantity: intPtr(5)},
			form:    url.Values{"edd_download_quantity": {"9"}},
			want:    intPtr(5),
		},
		{
			name:    "price specific field",
			options: models.CartOptions{PriceID: intPtr(2)},
			form:    url.Values{"edd_download_quantity_2": {"3"}},
			want:    intPtr(3),
		},
		{
			name:    "price specific beats generic",
			options: models.CartOptions{PriceID: intPtr(2)},
			form:    url.Values{"edd_download_quantity": {"4"}, "edd_download_quantity_2": {"3"}},
			want:    intPtr(3),
		},
		{
			name:    "price specific zero is honoured",
			options: models.CartOptions{PriceID: intPtr(2)},
			form:    url.Values{"edd_download_quantity_2": {"0"}},
			want:    intPtr(0),
		},
		{
			name: "generic field",
			form: url.Values{"edd_download_quantity": {"4"}},
			want: intPtr(4),
		},
		{
			name: "generic zero ignored",
			form: url.Values{"edd_download_quantity": {"0"}},
		},
		{
			name: "negative and junk are made absolute",
			form: url.Values{"edd_download_quantity": {"-6 items"}},
			want: intPtr(6),
		},
		{
			name:    "other price field ignored",
			options: models.CartOptions{PriceID: intPtr(1)},
			form:    url.Values{"edd_download_quantity_2": {"3"}},
		},
		{
			name: "no form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shaper.BackfillQuantity(tt.options, tt.form)
			if tt.want == nil {
				assert.Nil(t, got.Quantity)
				return
			}
			require.NotNil(t, got.Quantity)
			assert.Equal(t, *tt.want, *got.Quantity)
		})
	}
}

func TestAddToCart_Scenario(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	store := newStore()

	s.AddToCart(ctx, store, 42, models.CartOptions{PriceID: intPtr(2)}, url.Values{"edd_download_quantity_2": {"3"}})

	raw, ok := store.GetAndClear(ctx, models.EventAddedToCart)
	require.True(t, ok)
	var payload models.CartItemPayload
	require.NoError(t, models.DecodePayload(models.EventAddedToCart, raw, &payload))
	require.NotNil(t, payload.Options.Quantity)
	assert.Equal(t, 3, *payload.Options.Quantity)

	// put it back and let the consumer read it
	store.Set(ctx, models.EventAddedToCart, raw)
	ev := s.AddedToCart(ctx, store, defaultTrack)

	assert.Equal(t, models.KindTrack, ev.Kind)
	assert.Equal(t, "Added Download", ev.Name)
	assert.Equal(t, "added_to_cart", ev.EmitTag)
	assert.Equal(t, 3, ev.Properties["quantity"])
	assert.Equal(t, 2, ev.Properties["price_id"])
	assert.Equal(t, int64(42), ev.Properties["id"])
	assert.Equal(t, 99.0, ev.Properties["price"])

	again := s.AddedToCart(ctx, store, defaultTrack)
	assert.Equal(t, defaultTrack, again, "payload is consumed once")
}

func TestRemoveFromCart_QuantityAlwaysZero(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	store := newStore()
	cart := &mockCart{entries: []models.CartEntry{
		{ID: 7},
		{ID: 42, Options: models.CartOptions{PriceID: intPtr(1), Quantity: intPtr(4)}},
	}}

	s.RemoveFromCart(ctx, store, cart, 1)
	ev := s.RemovedFromCart(ctx, store, defaultTrack)

	assert.Equal(t, "Removed Download", ev.Name)
	assert.Equal(t, "removed_from_cart", ev.EmitTag)
	assert.Equal(t, 0, ev.Properties["quantity"])
	assert.Equal(t, 1, ev.Properties["price_id"])
	assert.Equal(t, int64(42), ev.Properties["id"])
}

func TestRemovedFromCart_ForcesZeroOnStoredQuantity(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	store := newStore()

	raw, err := models.EncodePayload(models.EventRemovedFromCart, models.CartItemPayload{
		DownloadID: 42,
		Options:    models.CartOptions{Quantity: intPtr(3)},
	})
	require.NoError(t, err)
	store.Set(ctx, models.EventRemovedFromCart, raw)

	ev := s.RemovedFromCart(ctx, store, defaultTrack)
	assert.Equal(t, 0, ev.Properties["quantity"])
}

func TestRemoveFromCart_MissingSlotWritesNothing(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	store := newStore()

	s.RemoveFromCart(ctx, store, &mockCart{entries: []models.CartEntry{{ID: 42}}}, 3)
	s.RemoveFromCart(ctx, store, &mockCart{entries: []models.CartEntry{{ID: 0}}}, 0)
	s.RemoveFromCart(ctx, store, &mockCart{}, -1)
	s.RemoveFromCart(ctx, store, nil, 0)

	_, ok := store.GetAndClear(ctx, models.EventRemovedFromCart)
	assert.False(t, ok)
}

func TestCompletedOrder_Scenario(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	store := newStore()

	s.CompletePurchase(ctx, store, 777)
	ev := s.CompletedOrder(ctx, store, defaultTrack)

	assert.Equal(t, models.KindTrack, ev.Kind)
	assert.Equal(t, "Completed Order", ev.Name)
	assert.Equal(t, "completed_purchase", ev.EmitTag)

	p := ev.Properties
	assert.Equal(t, int64(777), p["id"])
	assert.Equal(t, "k777", p["key"])
	assert.Equal(t, "EDD-777", p["payment_number"])
	assert.Equal(t, "ch_777", p["transaction_id"])
	assert.Equal(t, 99.0, p["subtotal"])
	assert.Equal(t, 108.9, p["total"])
	assert.Equal(t, 9.9, p["tax"])
	assert.Equal(t, "USD", p["currency"])
	assert.Equal(t, "paypal", p["gateway"])
	assert.Equal(t, "buyer@example.com", p["email"])

	userInfo, ok := p["user_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "buyer@example.com", userInfo["email"])
	assert.Equal(t, "198.51.100.7", userInfo["ip"])
	assert.Equal(t, int64(5), userInfo["customer_id"])
	assert.Equal(t, true, userInfo["is_guest"])
}

func TestCompletedOrder_UnknownPaymentStillEmits(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := shaper.New(newMockCatalog(), newMockOrders(), "", zap.New(core))
	ctx := context.Background()
	store := newStore()

	s.CompletePurchase(ctx, store, 12)
	ev := s.CompletedOrder(ctx, store, defaultTrack)

	assert.Equal(t, "Completed Order", ev.Name)
	assert.Equal(t, int64(12), ev.Properties["id"])
	assert.Equal(t, "", ev.Properties["key"])
	assert.Equal(t, 1, logs.FilterMessage("Order lookup failed").Len())
}

func TestConsumers_PassThroughWhenAbsent(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	def := models.NormalizedEvent{Kind: models.KindTrack, Name: "Upstream"}

	for _, store := range []deferred.Store{newStore(), deferred.NopStore{}, nil} {
		assert.Equal(t, def, s.AddedToCart(ctx, store, def))
		assert.Equal(t, def, s.RemovedFromCart(ctx, store, def))
		assert.Equal(t, def, s.CompletedOrder(ctx, store, def))
	}
}

func TestConsumers_MalformedPayloadPassesThroughSilently(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := shaper.New(newMockCatalog(), newMockOrders(), "", zap.New(core))
	ctx := context.Background()
	store := newStore()
	def := models.NormalizedEvent{Name: "Upstream"}

	store.Set(ctx, models.EventAddedToCart, []byte("{not json"))
	assert.Equal(t, def, s.AddedToCart(ctx, store, def))

	// a payload written for another event is rejected too
	raw, err := models.EncodePayload(models.EventCompletedPurchase, models.PurchasePayload{PaymentID: 777})
	require.NoError(t, err)
	store.Set(ctx, models.EventRemovedFromCart, raw)
	assert.Equal(t, def, s.RemovedFromCart(ctx, store, def))

	_, ok := store.GetAndClear(ctx, models.EventAddedToCart)
	assert.False(t, ok, "malformed payload is still cleared")
	assert.Zero(t, logs.Len())
}

func TestShapeCategoryView(t *testing.T) {
	s, _ := newShaper(t)
	ctx := context.Background()
	def := models.NormalizedEvent{Kind: models.KindPageView, Name: "Blog"}

	assert.Equal(t, def, s.ShapeCategoryView(ctx, def, models.PageContext{Kind: models.PageOther}))
	assert.Equal(t, def, s.ShapeCategoryView(ctx, def, models.PageContext{Kind: models.PageTaxonomy, Taxonomy: "post_tag"}))

	ev := s.ShapeCategoryView(ctx, def, models.PageContext{
		Kind: models.PageTaxonomy, Taxonomy: models.TaxonomyCategory, TermID: 11, TermTitle: "Themes",
	})
	assert.Equal(t, models.KindPageView, ev.Kind)
	assert.Equal(t, "Viewed Themes Download Category", ev.Name)
	assert.Equal(t, int64(11), ev.Properties["term_id"])

	ev = s.ShapeCategoryView(ctx, def, models.PageContext{
		Kind: models.PageTaxonomy, Taxonomy: models.TaxonomyTag, TermID: 12, TermTitle: "featured",
	})
	assert.Equal(t, "Viewed featured Download Tag", ev.Name)
}

func TestShapeProductView(t *testing.T) {
	catalog := newMockCatalog()
	catalog.usesSKU = true
	s := shaper.New(catalog, newMockOrders(), "Plugin", nil)
	ctx := context.Background()

	assert.Equal(t, defaultTrack, s.ShapeProductView(ctx, defaultTrack, models.PageContext{Kind: models.PageSingle, PostType: "post", ItemID: 42}))

	page := models.PageContext{Kind: models.PageSingle, PostType: models.PostTypeDownload, ItemID: 42}
	ev := s.ShapeProductView(ctx, defaultTrack, page)
	assert.Equal(t, models.KindTrack, ev.Kind)
	assert.Equal(t, "Viewed Plugin", ev.Name)
	assert.Equal(t, "", ev.EmitTag)
	assert.Equal(t, "THEME-PRO", ev.Properties["sku"])
	_, hasQty := ev.Properties["quantity"]
	_, hasPriceID := ev.Properties["price_id"]
	assert.False(t, hasQty)
	assert.False(t, hasPriceID)

	assert.Equal(t, ev, s.ShapeProductView(ctx, defaultTrack, page), "identical context shapes identically")
}

func TestRegister_RenderOrderAndActions(t *testing.T) {
	s, _ := newShaper(t)
	reg := hooks.NewRegistry()
	s.Register(reg)
	ctx := context.Background()

	store := newStore()
	action := &hooks.Scope{
		Store: store,
		Form:  url.Values{"edd_download_quantity": {"2"}},
	}
	reg.AddToCart(ctx, action, 7, models.CartOptions{})

	// the cart event from the previous request overrides the product view
	render := &hooks.Scope{
		Store: store,
		Page:  models.PageContext{Kind: models.PageSingle, PostType: models.PostTypeDownload, ItemID: 42},
	}
	ev := reg.RenderTrack(ctx, render, defaultTrack)
	assert.Equal(t, "Added Download", ev.Name)
	assert.Equal(t, 2, ev.Properties["quantity"])

	ev = reg.RenderTrack(ctx, render, defaultTrack)
	assert.Equal(t, "Viewed Download", ev.Name)

	page := reg.RenderPage(ctx, render, models.NormalizedEvent{Kind: models.KindPageView, Name: "Theme Pro"})
	assert.Equal(t, "Theme Pro", page.Name)
}

func TestRegister_ScopeWithoutStore(t *testing.T) {
	s, _ := newShaper(t)
	reg := hooks.NewRegistry()
	s.Register(reg)
	ctx := context.Background()

	reg.CompletePurchase(ctx, &hooks.Scope{}, 777)
	ev := reg.RenderTrack(ctx, &hooks.Scope{}, defaultTrack)
	assert.True(t, ev.IsZero())
}
