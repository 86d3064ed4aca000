package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard tracks redeemed refresh token IDs and per-subject revocation
// fences in Redis.
//
// Key layout:
//
//	auth:jti:<jti>       redeemed refresh token IDs
//	auth:fence:<userID>  unix-second revocation cutoff per subject
//
// MarkUsed leans on SET NX for atomicity: Redis serializes commands across
// connections, so exactly one of any number of concurrent redeemers observes
// the key as new.
type ReplayGuard struct {
	client *redis.Client
}

// NewReplayGuard wraps an established Redis client.
func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// IsUsed reports whether jti has already been redeemed.
func (g *ReplayGuard) IsUsed(ctx context.Context, jti string) (bool, error) {
	n, err := g.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// MarkUsed records jti as redeemed and reports whether this caller was the
// first. The entry expires with ttl; once the token itself has expired there
// is nothing left to replay.
func (g *ReplayGuard) MarkUsed(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	first, err := g.client.SetNX(ctx, jtiKey(jti), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay mark: %w", err)
	}
	return first, nil
}

// RevokeSubject fences every outstanding token for userID. The fence rounds
// up to the next whole second because token issue times carry second
// precision; rounding down would let a token issued within the same second
// slip past.
func (g *ReplayGuard) RevokeSubject(ctx context.Context, userID int64, ttl time.Duration) error {
	fence := time.Now().UTC().Truncate(time.Second).Add(time.Second)
	if err := g.client.Set(ctx, fenceKey(userID), strconv.FormatInt(fence.Unix(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("revoke subject: %w", err)
	}
	return nil
}

// RevokedAt returns the revocation fence for userID, or the zero time when
// none is set.
func (g *ReplayGuard) RevokedAt(ctx context.Context, userID int64) (time.Time, error) {
	val, err := g.client.Get(ctx, fenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("revocation fence: %w", err)
	}
	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("revocation fence: parse %q: %w", val, err)
	}
	return time.Unix(sec, 0).UTC(), nil
}

func jtiKey(jti string) string {
	return "auth:jti:" + jti
}

func fenceKey(userID int64) string {
	return "auth:fence:" + strconv.FormatInt(userID, 10)
}
