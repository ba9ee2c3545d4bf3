// Package cache provides TTL caching for merged news response pages.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/civicwire/statehouse-news/internal/domain"
)

// DefaultTTL is applied when Set is called with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// Cache stores fully merged, annotated response pages keyed by normalized
// query. Implementations own their state exclusively; per-key operations are
// atomic with respect to concurrent access.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.NewsResponse, bool, error)
	Set(ctx context.Context, key string, resp *domain.NewsResponse, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Options controls cache construction.
type Options struct {
	// RedisAddr is required for the redis backend.
	RedisAddr string
	// DefaultTTL overrides DefaultTTL when positive.
	DefaultTTL time.Duration
}

// NewCache creates the configured cache backend.
func NewCache(typ string, opts Options) (Cache, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return newRedis(opts.RedisAddr)
	default:
		return nil, fmt.Errorf("unsupported cache type %q", typ)
	}
}

// Key derives the deterministic cache key for a set of normalized filters.
// Equivalent filter sets collide; distinct ones never do, because every field
// occupies a fixed position.
func Key(f domain.QueryFilters) string {
	var b strings.Builder
	b.WriteString("news:search=")
	b.WriteString(f.Search)
	b.WriteString("|region=")
	b.WriteString(f.Region)
	b.WriteString("|topic=")
	b.WriteString(f.Topic)
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(f.Page))
	b.WriteString("|size=")
	b.WriteString(strconv.Itoa(f.PageSize))
	return b.String()
}
