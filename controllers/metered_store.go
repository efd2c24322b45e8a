package controllers

import (
	"context"
	"time"

	"analytics-service/deferred"
	"analytics-service/models"
	aws_pkg "analytics-service/pkg/aws"
)

// meteredStore counts deferred write attempts and successful reads. Stores
// drop failed writes silently, so a write attempt is not a stored event.
type meteredStore struct {
	deferred.Store
	metrics aws_pkg.MetricsRecorder
	mode    string
}

func (m *meteredStore) Set(ctx context.Context, name models.EventName, payload []byte) {
	m.Store.Set(ctx, name, payload)
	m.record(ctx, aws_pkg.MetricDeferredWriteAttempts, name)
}

func (m *meteredStore) GetAndClear(ctx context.Context, name models.EventName) ([]byte, bool) {
	raw, ok := m.Store.GetAndClear(ctx, name)
	if ok {
		m.record(ctx, aws_pkg.MetricDeferredConsumed, name)
	}
	return raw, ok
}

// metered wraps store unless it is a NopStore, which has nothing to count.
func metered(store deferred.Store, metrics aws_pkg.MetricsRecorder, mode deferred.Mode) deferred.Store {
	if _, ok := store.(deferred.NopStore); ok {
		return store
	}
	return &meteredStore{Store: store, metrics: metrics, mode: string(mode)}
}

func (m *meteredStore) record(ctx context.Context, metric string, name models.EventName) {
	if m.metrics == nil || !m.metrics.IsEnabled() {
		return
	}
	dims := map[string]string{
		"Event": string(name),
		"Store": m.mode,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = m.metrics.RecordCount(ctx, metric, dims)
	}()
}
