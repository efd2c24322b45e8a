// Package shaper turns storefront activity into analytics events.
//
// Live renders are shaped from the page context. Cart and purchase actions
// are shaped in two steps: a producer stores a small payload in the visitor's
// deferred store when the action happens, and a consumer turns it into a
// track event on the next render. Every shaping function returns either a
// shaped event or the default it was given, unchanged.
package shaper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"analytics-service/deferred"
	"analytics-service/hooks"
	"analytics-service/models"
	"analytics-service/repository"

	"go.uber.org/zap"
)

const DefaultSingularLabel = "Download"

type Shaper struct {
	catalog  repository.CatalogAccessor
	orders   repository.OrderAccessor
	singular string
	logger   *zap.Logger
}

// New creates a Shaper. singular is the store's label for one item, used in
// event names.
func New(catalog repository.CatalogAccessor, orders repository.OrderAccessor, singular string, logger *zap.Logger) *Shaper {
	if singular == "" {
		singular = DefaultSingularLabel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shaper{
		catalog:  catalog,
		orders:   orders,
		singular: singular,
		logger:   logger,
	}
}

// Register wires the storefront integration into reg. Track filters run in
// registration order.
func (s *Shaper) Register(reg *hooks.Registry) {
	reg.AddPageFilter(hooks.PageFilterFunc(func(ctx context.Context, scope *hooks.Scope, def models.NormalizedEvent) models.NormalizedEvent {
		return s.ShapeCategoryView(ctx, def, scope.Page)
	}))
	reg.AddTrackFilter(hooks.TrackFilterFunc(func(ctx context.Context, scope *hooks.Scope, def models.NormalizedEvent) models.NormalizedEvent {
		return s.ShapeProductView(ctx, def, scope.Page)
	}))

	reg.HandlePurchaseComplete(hooks.PurchaseCompleteFunc(func(ctx context.Context, scope *hooks.Scope, paymentID int64) {
		s.CompletePurchase(ctx, scope.DeferredStore(), paymentID)
	}))
	reg.AddTrackFilter(hooks.TrackFilterFunc(func(ctx context.Context, scope *hooks.Scope, def models.NormalizedEvent) models.NormalizedEvent {
		return s.CompletedOrder(ctx, scope.DeferredStore(), def)
	}))

	reg.HandleAddToCart(hooks.CartAddFunc(func(ctx context.Context, scope *hooks.Scope, downloadID int64, options models.CartOptions) {
		s.AddToCart(ctx, scope.DeferredStore(), downloadID, options, scope.Form)
	}))
	reg.AddTrackFilter(hooks.TrackFilterFunc(func(ctx context.Context, scope *hooks.Scope, def models.NormalizedEvent) models.NormalizedEvent {
		return s.AddedToCart(ctx, scope.DeferredStore(), def)
	}))

	reg.HandleRemoveFromCart(hooks.CartRemoveFunc(func(ctx context.Context, scope *hooks.Scope, cartKey int) {
		s.RemoveFromCart(ctx, scope.DeferredStore(), scope.Cart, cartKey)
	}))
	reg.AddTrackFilter(hooks.TrackFilterFunc(func(ctx context.Context, scope *hooks.Scope, def models.NormalizedEvent) models.NormalizedEvent {
		return s.RemovedFromCart(ctx, scope.DeferredStore(), def)
	}))
}

// lookup returns a function that records the error of an accessor call in
// errs and passes its value through.
func lookup[T any](errs *[]error) func(T, error) T {
	return func(v T, err error) T {
		if err != nil {
			*errs = append(*errs, err)
		}
		return v
	}
}

func (s *Shaper) warnLookup(msg string, errs []error, fields ...zap.Field) {
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn(msg, append(fields, zap.Error(err))...)
	}
}

// consume reads and clears name from store and decodes it into out. Absent
// and undecodable payloads both report false.
func consume(ctx context.Context, store deferred.Store, name models.EventName, out any) bool {
	if store == nil {
		return false
	}
	raw, ok := store.GetAndClear(ctx, name)
	if !ok {
		return false
	}
	return models.DecodePayload(name, raw, out) == nil
}

func (s *Shaper) produce(ctx context.Context, store deferred.Store, name models.EventName, payload any) {
	if store == nil {
		return
	}
	raw, err := models.EncodePayload(name, payload)
	if err != nil {
		s.logger.Warn("Skipping deferred event", zap.String("event", string(name)), zap.Error(err))
		return
	}
	store.Set(ctx, name, raw)
}

func (s *Shaper) label(format string) string {
	return fmt.Sprintf(format, s.singular)
}

func categoryNames(terms []models.Term) string {
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
