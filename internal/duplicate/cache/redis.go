package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lineage/internal/duplicate"
	id "lineage/pkg/domain"
)

// Redis caches scan results in a shared Redis instance so all replicas see
// the same cache and the same invalidation.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func versionKey(ownerID id.UserID) string {
	return fmt.Sprintf("lineage:dupscan:ver:%s", ownerID)
}

func (c *Redis) version(ctx context.Context, ownerID id.UserID) (string, error) {
	v, err := c.client.Get(ctx, versionKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan cache version: %w", err)
	}
	return v, nil
}

func entryKey(ownerID id.UserID, version, scanKey string) string {
	return fmt.Sprintf("lineage:dupscan:%s:%s:%s", ownerID, version, scanKey)
}

func (c *Redis) Get(ctx context.Context, ownerID id.UserID, scanKey string) ([]duplicate.Candidate, bool, error) {
	version, err := c.version(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.client.Get(ctx, entryKey(ownerID, version, scanKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scan cache get: %w", err)
	}
	var candidates []duplicate.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		// Corrupt entry, treat as a miss so the scan recomputes it.
		return nil, false, nil
	}
	return candidates, true, nil
}

func (c *Redis) Set(ctx context.Context, ownerID id.UserID, scanKey string, candidates []duplicate.Candidate, ttl time.Duration) error {
	version, err := c.version(ctx, ownerID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("scan cache encode: %w", err)
	}
	if err := c.client.Set(ctx, entryKey(ownerID, version, scanKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("scan cache set: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, ownerID id.UserID) error {
	if err := c.client.Incr(ctx, versionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("scan cache invalidate: %w", err)
	}
	return nil
}
