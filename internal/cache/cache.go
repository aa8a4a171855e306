package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/eshop/internal/models"
)

const DefaultTTL = 5 * time.Minute

func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ProductCache keeps JSON copies of products keyed by id.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func Key(id uuid.UUID) string {
	return "product:" + id.String()
}

// Get reports a miss as (nil, false, nil).
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	b, err := c.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p models.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached product: %w", err)
	}
	return &p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(p.ID), b, c.ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, Key(id)).Err()
}
