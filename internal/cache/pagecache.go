package cache

import (
	"context"
	"fmt"
	"time"

	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// PageCache memoizes whole rendered feed pages for a bounded TTL.
//
// The contract is deliberately staleness-tolerant: mutations never invalidate
// entries, so within the TTL window a cached page may show posts that have
// since been created or deleted. Entries are populated lazily on read, expire
// naturally, or are wiped all at once by Clear; there is no partial
// invalidation. Clear exists for maintenance and tests only; ordinary
// mutation handlers must not call it.
type PageCache interface {
	// Get returns the cached rendered bytes for the page, if present.
	Get(ctx context.Context, page int) ([]byte, bool)
	// Set stores the rendered bytes for the page for the cache's TTL.
	Set(ctx context.Context, page int, body []byte)
	// Clear wipes every cached page immediately.
	Clear(ctx context.Context) error
}

const feedPageKeyPrefix = "feed:index:page:"

// redisPageCache is the Redis-backed PageCache. A nil client degrades to a
// pass-through: every Get misses and Set/Clear are no-ops.
type redisPageCache struct {
	rdb  *redis.Client
	ttl  time.Duration
	feed string
}

// NewPageCache returns a PageCache over the given Redis client with the given TTL.
func NewPageCache(rdb *redis.Client, ttl time.Duration) PageCache {
	return &redisPageCache{rdb: rdb, ttl: ttl, feed: "index"}
}

func feedPageKey(page int) string {
	return fmt.Sprintf("%s%d", feedPageKeyPrefix, page)
}

func (p *redisPageCache) Get(ctx context.Context, page int) ([]byte, bool) {
	if p.rdb == nil {
		return nil, false
	}
	body, err := p.rdb.Get(ctx, feedPageKey(page)).Bytes()
	if err != nil {
		observability.FeedCacheMisses.WithLabelValues(p.feed).Inc()
		return nil, false
	}
	observability.FeedCacheHits.WithLabelValues(p.feed).Inc()
	return body, true
}

func (p *redisPageCache) Set(ctx context.Context, page int, body []byte) {
	if p.rdb == nil {
		return
	}
	// Best-effort: a failed write only costs a rebuild on the next request.
	_ = p.rdb.Set(ctx, feedPageKey(page), body, p.ttl).Err()
}

func (p *redisPageCache) Clear(ctx context.Context) error {
	if p.rdb == nil {
		return nil
	}
	iter := p.rdb.Scan(ctx, 0, feedPageKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return p.rdb.Del(ctx, keys...).Err()
}
