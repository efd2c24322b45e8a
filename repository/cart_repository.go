package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"analytics-service/models"

	"github.com/redis/go-redis/v9"
)

// RedisCartRepository reads the cart documents the storefront keeps in Redis.
type RedisCartRepository struct {
	client *redis.Client
}

func NewRedisCartRepository(client *redis.Client) *RedisCartRepository {
	return &RedisCartRepository{client: client}
}

func (r *RedisCartRepository) getKey(visitorID string) string {
	return fmt.Sprintf("cart:user:%s", visitorID)
}

// ForVisitor scopes cart reads to one visitor.
func (r *RedisCartRepository) ForVisitor(visitorID string) CartAccessor {
	return &visitorCart{repo: r, visitorID: visitorID}
}

// GetCart returns nil when the visitor has no cart.
func (r *RedisCartRepository) GetCart(ctx context.Context, visitorID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.getKey(visitorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

type visitorCart struct {
	repo      *RedisCartRepository
	visitorID string
}

func (c *visitorCart) CartContents(ctx context.Context) ([]models.CartEntry, error) {
	if c.visitorID == "" {
		return nil, nil
	}
	cart, err := c.repo.GetCart(ctx, c.visitorID)
	if err != nil || cart == nil {
		return nil, err
	}
	return cart.Items, nil
}
