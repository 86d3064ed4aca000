package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
)

// IdentityCache keeps recently resolved accounts in Redis so the auth
// middleware does not hit Mongo on every request. Entries are JSON copies of
// the account record; the password hash is excluded from serialization and
// never enters Redis.
type IdentityCache struct {
	client *redis.Client
}

// NewIdentityCache wraps an established Redis client.
func NewIdentityCache(client *redis.Client) *IdentityCache {
	return &IdentityCache{client: client}
}

// Get returns the cached account, or (nil, nil) on a miss.
func (c *IdentityCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	raw, err := c.client.Get(ctx, identityKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity cache get: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// A corrupt entry behaves like a miss; the caller re-reads the store.
		_ = c.client.Del(ctx, identityKey(id)).Err()
		return nil, nil
	}
	return &user, nil
}

// Set stores the account for ttl.
func (c *IdentityCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	if err := c.client.Set(ctx, identityKey(user.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("identity cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached account so the next request sees the store.
func (c *IdentityCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, identityKey(id)).Err(); err != nil {
		return fmt.Errorf("identity cache invalidate: %w", err)
	}
	return nil
}

func identityKey(id int64) string {
	return "auth:user:" + strconv.FormatInt(id, 10)
}
