package deferred_test

import (
	"context"
	"os"
	"testing"
	"time"

	"analytics-service/deferred"
	"analytics-service/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when REDIS_URL points at a reachable Redis 6.2+.
func TestRedisStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("skipping redis integration test; set REDIS_URL to run")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := deferred.NewRedisStore(client, time.Minute, nil).ForVisitor(uuid.NewString())

	_, ok := store.GetAndClear(ctx, models.EventAddedToCart)
	assert.False(t, ok)

	store.Set(ctx, models.EventAddedToCart, []byte("first"))
	store.Set(ctx, models.EventAddedToCart, []byte("second"))

	got, ok := store.GetAndClear(ctx, models.EventAddedToCart)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)

	_, ok = store.GetAndClear(ctx, models.EventAddedToCart)
	assert.False(t, ok)
}

func TestRedisStore_UnavailableDegrades(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx := context.Background()
	store := deferred.NewRedisStore(client, time.Minute, nil).ForVisitor("v1")

	store.Set(ctx, models.EventAddedToCart, []byte("x"))
	_, ok := store.GetAndClear(ctx, models.EventAddedToCart)
	assert.False(t, ok)
}
