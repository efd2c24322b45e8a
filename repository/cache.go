package repository

import (
	"context"
	"sync"
)

type rowCacheKey struct{}

// rowCache memoises row lookups for the lifetime of one context. Errors are
// kept too, so a missing row is queried once.
type rowCache struct {
	mu   sync.Mutex
	rows map[string]cachedRow
}

type cachedRow struct {
	value any
	err   error
}

// WithRowCache returns ctx carrying a row cache. A ctx that already carries
// one is returned unchanged.
func WithRowCache(ctx context.Context) context.Context {
	if _, ok := ctx.Value(rowCacheKey{}).(*rowCache); ok {
		return ctx
	}
	return context.WithValue(ctx, rowCacheKey{}, &rowCache{rows: map[string]cachedRow{}})
}

func cacheFrom(ctx context.Context) *rowCache {
	c, _ := ctx.Value(rowCacheKey{}).(*rowCache)
	return c
}

// peek returns a cached row without loading it.
func peek[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	c := cacheFrom(ctx)
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[key]
	if !ok || row.err != nil {
		return zero, false
	}
	v, ok := row.value.(T)
	return v, ok
}

// cached runs load once per key and ctx. Without a row cache on ctx it just
// calls load.
func cached[T any](ctx context.Context, key string, load func() (T, error)) (T, error) {
	c := cacheFrom(ctx)
	if c == nil {
		return load()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if row, ok := c.rows[key]; ok {
		v, _ := row.value.(T)
		return v, row.err
	}
	v, err := load()
	c.rows[key] = cachedRow{value: v, err: err}
	return v, err
}
