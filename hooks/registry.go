package hooks

import (
	"context"
	"sync"

	"analytics-service/models"
)

// Registry holds the registered hooks in registration order. Filters form a
// chain: each one receives the previous filter's result.
type Registry struct {
	mu               sync.RWMutex
	pageFilters      []PageFilter
	trackFilters     []TrackFilter
	addHandlers      []CartAddHandler
	removeHandlers   []CartRemoveHandler
	purchaseHandlers []PurchaseCompleteHandler
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) AddPageFilter(f PageFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pageFilters = append(r.pageFilters, f)
}

func (r *Registry) AddTrackFilter(f TrackFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackFilters = append(r.trackFilters, f)
}

func (r *Registry) HandleAddToCart(h CartAddHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addHandlers = append(r.addHandlers, h)
}

func (r *Registry) HandleRemoveFromCart(h CartRemoveHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeHandlers = append(r.removeHandlers, h)
}

func (r *Registry) HandlePurchaseComplete(h PurchaseCompleteHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchaseHandlers = append(r.purchaseHandlers, h)
}

// RenderPage runs the page filter chain over def.
func (r *Registry) RenderPage(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent {
	r.mu.RLock()
	filters := r.pageFilters
	r.mu.RUnlock()

	ev := def
	for _, f := range filters {
		ev = f.FilterPage(ctx, scope, ev)
	}
	return ev
}

// RenderTrack runs the track filter chain over def.
func (r *Registry) RenderTrack(ctx context.Context, scope *Scope, def models.NormalizedEvent) models.NormalizedEvent {
	r.mu.RLock()
	filters := r.trackFilters
	r.mu.RUnlock()

	ev := def
	for _, f := range filters {
		ev = f.FilterTrack(ctx, scope, ev)
	}
	return ev
}

func (r *Registry) AddToCart(ctx context.Context, scope *Scope, downloadID int64, options models.CartOptions) {
	r.mu.RLock()
	handlers := r.addHandlers
	r.mu.RUnlock()

	for _, h := range handlers {
		h.OnAddToCart(ctx, scope, downloadID, options)
	}
}

func (r *Registry) RemoveFromCart(ctx context.Context, scope *Scope, cartKey int) {
	r.mu.RLock()
	handlers := r.removeHandlers
	r.mu.RUnlock()

	for _, h := range handlers {
		h.OnRemoveFromCart(ctx, scope, cartKey)
	}
}

func (r *Registry) CompletePurchase(ctx context.Context, scope *Scope, paymentID int64) {
	r.mu.RLock()
	handlers := r.purchaseHandlers
	r.mu.RUnlock()

	for _, h := range handlers {
		h.OnPurchaseComplete(ctx, scope, paymentID)
	}
}
