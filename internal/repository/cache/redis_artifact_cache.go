package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisArtifactCache is the shared cache layer, keyed by fingerprint so any
// instance serving the same user hits the same entries. A nil client turns
// every operation into a no-op miss, which keeps the service usable when
// Redis is down (lookups fall through to the database).
type RedisArtifactCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisArtifactCache(rdb *redis.Client, ttl time.Duration) *RedisArtifactCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisArtifactCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func redisKey(userId uuid.UUID, fingerprint string) string {
	return "artifact:" + userId.String() + ":" + fingerprint
}

func (c *RedisArtifactCache) Set(ctx context.Context, userId uuid.UUID, fingerprint string, payload json.RawMessage) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, redisKey(userId, fingerprint), []byte(payload), c.ttl).Err()
}

func (c *RedisArtifactCache) Get(ctx context.Context, userId uuid.UUID, fingerprint string) (json.RawMessage, bool, error) {
	if c.rdb == nil {
		return nil, false, nil
	}
	data, err := c.rdb.Get(ctx, redisKey(userId, fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(data), true, nil
}

// DeletePrefix scans for every key of the user under the fingerprint prefix
// and deletes them, returning the count.
func (c *RedisArtifactCache) DeletePrefix(ctx context.Context, userId uuid.UUID, prefix string) (int64, error) {
	if c.rdb == nil {
		return 0, nil
	}

	var deleted int64
	iter := c.rdb.Scan(ctx, 0, redisKey(userId, prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, iter.Err()
}
