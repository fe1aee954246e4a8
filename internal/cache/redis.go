package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/redis/go-redis/v9"
)

const catalogKey = "catalog:all"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

// RedisCache is a read-through copy of the backend catalog. Entries expire
// after baseTTL plus up to five minutes of jitter so keys written together do
// not all expire together.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.get(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r RedisCache) SetProduct(ctx context.Context, p *domain.Product) error {
	return r.set(ctx, productKey(p.ID), p)
}

func (r RedisCache) GetCatalog(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.get(ctx, catalogKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetCatalog(ctx context.Context, products []domain.Product) error {
	return r.set(ctx, catalogKey, products)
}

// Invalidate drops the listing; per-product keys age out on their own.
func (r RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) get(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
