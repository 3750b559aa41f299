// Package cache holds the page cache for the global feed. The rendered feed
// is kept in redis for a short TTL and served as-is until it expires; writes
// never invalidate it, so staleness is bounded only by the TTL. That trade-off
// (freshness vs. load on the hottest page) is part of the contract.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a rendered global feed page is served from cache.
const DefaultTTL = 20 * time.Second

const indexKeyPrefix = "index_page"

// PageCache caches rendered global feed pages, one redis key per page number.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a PageCache over the given redis client. A
// non-positive ttl falls back to DefaultTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached bytes for the given page number. A redis failure
// counts as a miss: the cache must never take the feed down with it.
func (c *PageCache) Get(ctx context.Context, page int) ([]byte, bool) {
	body, err := c.client.Get(ctx, indexKey(page)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the rendered bytes for the given page number. The TTL starts
// counting now; there is no refresh on later reads. Write errors are
// swallowed for the same reason Get treats failures as misses.
func (c *PageCache) Set(ctx context.Context, page int, body []byte) {
	_ = c.client.Set(ctx, indexKey(page), body, c.ttl).Err()
}

// Clear drops all cached feed pages. Only tests and operators use this;
// nothing in the request path ever invalidates the cache.
func (c *PageCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, indexKeyPrefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// TTL exposes the configured expiry window.
func (c *PageCache) TTL() time.Duration {
	return c.ttl
}

func indexKey(page int) string {
	return fmt.Sprintf("%s:%d", indexKeyPrefix, page)
}
