package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPageCache(t *testing.T, ttl time.Duration) (PageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPageCache(rdb, ttl), mr
}

func TestPageCacheRoundTrip(t *testing.T) {
	pc, _ := setupPageCache(t, 20*time.Second)
	ctx := context.Background()

	_, ok := pc.Get(ctx, 1)
	assert.False(t, ok, "cold cache must miss")

	body := []byte(`{"page":{"items":[]}}`)
	pc.Set(ctx, 1, body)

	got, ok := pc.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, body, got)

	// Other page numbers are separate entries.
	_, ok = pc.Get(ctx, 2)
	assert.False(t, ok)
}

func TestPageCacheServesStaleBytesUntilExpiry(t *testing.T) {
	pc, mr := setupPageCache(t, 20*time.Second)
	ctx := context.Background()

	stale := []byte(`{"posts":["old"]}`)
	pc.Set(ctx, 1, stale)

	// Writes elsewhere do not touch the entry: readers keep seeing the
	// stored bytes for the full TTL.
	got, ok := pc.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, stale, got)

	mr.FastForward(19 * time.Second)
	got, ok = pc.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, stale, got)

	mr.FastForward(2 * time.Second)
	_, ok = pc.Get(ctx, 1)
	assert.False(t, ok, "entry must expire after the TTL")
}

func TestPageCacheClear(t *testing.T) {
	pc, _ := setupPageCache(t, time.Minute)
	ctx := context.Background()

	pc.Set(ctx, 1, []byte("one"))
	pc.Set(ctx, 2, []byte("two"))
	pc.Set(ctx, 3, []byte("three"))

	require.NoError(t, pc.Clear(ctx))

	for page := 1; page <= 3; page++ {
		_, ok := pc.Get(ctx, page)
		assert.False(t, ok, "page %d must be gone after Clear", page)
	}

	// Clearing an empty cache is fine.
	require.NoError(t, pc.Clear(ctx))
}

func TestPageCacheClearLeavesOtherKeysAlone(t *testing.T) {
	pc, mr := setupPageCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("post:42", "cached post"))
	pc.Set(ctx, 1, []byte("feed page"))

	require.NoError(t, pc.Clear(ctx))

	assert.False(t, mr.Exists(feedPageKey(1)))
	assert.True(t, mr.Exists("post:42"))
}

func TestPageCacheNilClientFailsOpen(t *testing.T) {
	pc := NewPageCache(nil, time.Minute)
	ctx := context.Background()

	pc.Set(ctx, 1, []byte("ignored"))
	_, ok := pc.Get(ctx, 1)
	assert.False(t, ok)
	assert.NoError(t, pc.Clear(ctx))
}
