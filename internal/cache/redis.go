package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicwire/statehouse-news/internal/domain"
)

// keyPrefix namespaces this service's entries so Clear does not touch
// unrelated keys on a shared instance.
const keyPrefix = "statehouse:"

// redisCache is a Cache backed by a shared Redis instance. TTL enforcement is
// server-side, so expiry needs no lazy read-side eviction here.
type redisCache struct {
	client *redis.Client
}

func newRedis(addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) (*domain.NewsResponse, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var resp domain.NewsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Unreadable payload, drop it and report a miss.
		r.client.Del(ctx, keyPrefix+key)
		return nil, false, nil
	}
	return &resp, true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, resp *domain.NewsResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal cached response: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry under this service's prefix via SCAN, leaving
// other tenants of the instance alone.
func (r *redisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
