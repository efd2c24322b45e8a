package deferred

import (
	"context"
	"errors"
	"fmt"
	"time"

	"analytics-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisPrefix = "analytics:deferred:"

// RedisStore keeps deferred events server side, keyed by visitor id, so the
// browser only carries the visitor cookie.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: defaultRedisPrefix,
		logger: logger,
	}
}

func (s *RedisStore) ForVisitor(visitorID string) Store {
	return &redisVisitorStore{parent: s, visitorID: visitorID}
}

func (s *RedisStore) getKey(visitorID string, name models.EventName) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, visitorID, name)
}

type redisVisitorStore struct {
	parent    *RedisStore
	visitorID string
}

func (r *redisVisitorStore) Set(ctx context.Context, name models.EventName, payload []byte) {
	key := r.parent.getKey(r.visitorID, name)
	if err := r.parent.client.Set(ctx, key, payload, r.parent.ttl).Err(); err != nil {
		r.parent.logger.Warn("Dropping deferred event, redis write failed",
			zap.String("event", string(name)),
			zap.Error(err),
		)
	}
}

// GetAndClear uses GETDEL so two renders racing for the same entry cannot
// both consume it.
func (r *redisVisitorStore) GetAndClear(ctx context.Context, name models.EventName) ([]byte, bool) {
	key := r.parent.getKey(r.visitorID, name)
	data, err := r.parent.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.parent.logger.Warn("Deferred event read failed",
			zap.String("event", string(name)),
			zap.Error(err),
		)
		return nil, false
	}
	return data, true
}

var _ Backend = (*RedisStore)(nil)
