package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Identity is the cached slice of a user record needed by the approval
// gate: enough to decide access without a database round trip.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

// IdentityCache caches identity lookups in Redis with a short TTL. A nil
// client disables the cache; every method degrades to a miss or a no-op.
type IdentityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewIdentityCache creates a new identity cache. client may be nil.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{rdb: client, ttl: ttl}
}

func key(userID string) string {
	return "identity:" + userID
}

// Get returns the cached identity and whether it was present
func (c *IdentityCache) Get(ctx context.Context, userID string) (*Identity, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, false
	}
	return &id, true
}

// Set stores an identity for the configured TTL
func (c *IdentityCache) Set(ctx context.Context, id *Identity) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key(id.ID), raw, c.ttl)
}

// Invalidate drops a cached identity after a user mutation
func (c *IdentityCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key(userID)).Err()
}
