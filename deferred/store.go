// Package deferred hands an event payload from the request that caused it to
// the next page render of the same visitor.
//
// Each event name holds at most one pending payload. A write replaces any
// pending payload, a read returns it once and clears it, and an entry that is
// never read expires after the store's TTL. Stores never fail loudly: when the
// backing storage is unavailable writes are dropped and reads report absent.
package deferred

import (
	"context"
	"time"

	"analytics-service/models"
)

// DefaultTTL is one page-load window.
const DefaultTTL = 5 * time.Minute

// Store is the deferred event store of a single visitor.
type Store interface {
	Set(ctx context.Context, name models.EventName, payload []byte)
	GetAndClear(ctx context.Context, name models.EventName) ([]byte, bool)
}

// Backend is a shared store partitioned by visitor id.
type Backend interface {
	ForVisitor(visitorID string) Store
}

// NopStore is used when no storage is available.
type NopStore struct{}

func (NopStore) Set(context.Context, models.EventName, []byte) {}

func (NopStore) GetAndClear(context.Context, models.EventName) ([]byte, bool) {
	return nil, false
}

var _ Store = NopStore{}
