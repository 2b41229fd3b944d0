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

// setupCacheTest creates a miniredis-backed identity cache
func setupCacheTest(t *testing.T, ttl time.Duration) (*IdentityCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewIdentityCache(client, ttl), mr
}

func TestIdentityCache_SetGet(t *testing.T) {
	c, _ := setupCacheTest(t, time.Minute)
	ctx := context.Background()

	id := &Identity{ID: "u1", Email: "a@example.com", Role: "manager", Approved: true}
	c.Set(ctx, id)

	got, hit := c.Get(ctx, "u1")
	require.True(t, hit)
	assert.Equal(t, id, got)
}

func TestIdentityCache_Miss(t *testing.T) {
	c, _ := setupCacheTest(t, time.Minute)

	_, hit := c.Get(context.Background(), "ghost")
	assert.False(t, hit)
}

func TestIdentityCache_TTL(t *testing.T) {
	c, mr := setupCacheTest(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, &Identity{ID: "u1", Role: "manager", Approved: true})
	mr.FastForward(2 * time.Minute)

	_, hit := c.Get(ctx, "u1")
	assert.False(t, hit)
}

func TestIdentityCache_Invalidate(t *testing.T) {
	c, _ := setupCacheTest(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, &Identity{ID: "u1", Role: "manager", Approved: true})
	require.NoError(t, c.Invalidate(ctx, "u1"))

	_, hit := c.Get(ctx, "u1")
	assert.False(t, hit)
}

func TestIdentityCache_NilClient(t *testing.T) {
	// A nil Redis client degrades to a permanent miss, never an error
	c := NewIdentityCache(nil, time.Minute)
	ctx := context.Background()

	c.Set(ctx, &Identity{ID: "u1"})
	_, hit := c.Get(ctx, "u1")
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(ctx, "u1"))
}
