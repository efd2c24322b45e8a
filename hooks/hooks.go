// Package hooks defines the typed extension points the storefront calls into
// and the registry that dispatches them.
package hooks

import (
	"context"
	"net/url"

	"analytics-service/deferred"
	"analytics-service/models"
	"analytics-service/repository"
)

// Scope is what a hook can see of the visitor request being handled.
type Scope struct {
	Page  models.PageContext
	Store deferred.Store
	Cart  repository.CartAccessor
	// Form is the submitted storefront form, if any.
	Form url.Values
}

// DeferredStore returns the scope's store, or a NopStore when none is set.
func (s *Scope) DeferredStore() deferred.Store {
	if s == nil || s.Store == nil {
		return deferred.NopStore{}
	}
	return s.Store
}

// PageFilter reshapes the page event of a render.
type PageFilter interface {
	FilterPage(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent
}

// TrackFilter reshapes the track event of a render.
type TrackFilter interface {
	FilterTrack(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent
}

type CartAddHandler interface {
	OnAddToCart(ctx context.Context, scope *Scope, downloadID int64, options models.CartOptions)
}

type CartRemoveHandler interface {
	OnRemoveFromCart(ctx context.Context, scope *Scope, cartKey int)
}

type PurchaseCompleteHandler interface {
	OnPurchaseComplete(ctx context.Context, scope *Scope, paymentID int64)
}

type PageFilterFunc func(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent

func (f PageFilterFunc) FilterPage(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent {
	return f(ctx, scope, def)
}

type TrackFilterFunc func(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent

func (f TrackFilterFunc) FilterTrack(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent {
	return f(ctx, scope, def)
}

type CartAddFunc func(ctx context.Context, scope *Scope, downloadID int64, options models.CartOptions)

func (f CartAddFunc) OnAddToCart(ctx context.Context, scope *Scope, downloadID int64, options models.CartOptions) {
	f(ctx, scope, downloadID, options)
}

type CartRemoveFunc func(ctx context.Context, scope *Scope, cartKey int)

func (f CartRemoveFunc) OnRemoveFromCart(ctx context.Context, scope *Scope, cartKey int) {
	f(ctx, scope, cartKey)
}

type PurchaseCompleteFunc func(ctx context.Context, scope *Scope, paymentID int64)

func (f PurchaseCompleteFunc) OnPurchaseComplete(ctx context.Context, scope *Scope, paymentID int64) {
	f(ctx, scope, paymentID)
}
