// Package cache stores assembled page batches in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/cursorpage/data/config"
	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/paging"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultTTL is used when no positive TTL is given.
const DefaultTTL = time.Minute

// BatchCache implements paging.BatchCache on top of Redis. Batches are
// stored BSON-encoded so documents keep their store types.
type BatchCache struct {
	rc        redis.Cmdable
	prefix    string
	ttl       time.Duration
	collector metrics.Collector
}

var _ paging.BatchCache = (*BatchCache)(nil)

// NewBatchCache creates a cache writing keys under prefix.
func NewBatchCache(rc redis.Cmdable, prefix string, ttl time.Duration) *BatchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BatchCache{
		rc:        rc,
		prefix:    prefix,
		ttl:       ttl,
		collector: metrics.NoOpCollector{},
	}
}

// NewBatchCacheWithMetrics creates a cache reporting commands to collector.
func NewBatchCacheWithMetrics(rc redis.Cmdable, prefix string, ttl time.Duration, collector metrics.Collector) *BatchCache {
	c := NewBatchCache(rc, prefix, ttl)
	if collector != nil {
		c.collector = collector
	}
	return c
}

// Key returns the Redis key of a paging cache key.
func (c *BatchCache) Key(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:page:%s", c.prefix, key)
}

// Get returns the cached batch, or nil, nil on a miss.
func (c *BatchCache) Get(ctx context.Context, key string) (*paging.Batch, error) {
	if c.rc == nil {
		err := errors.New("redis client is nil, cannot get cache")
		c.collector.RedisCommand("get", err)
		return nil, err
	}

	raw, err := c.rc.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.collector.RedisCommand("get", nil)
		return nil, nil
	}
	c.collector.RedisCommand("get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var batch paging.Batch
	if err := bson.Unmarshal(raw, &batch); err != nil {
		c.collector.RedisCommand("unmarshal", err)
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	if batch.Response == nil {
		batch.Response = []bson.M{}
	}
	return &batch, nil
}

// Set stores batch for the configured TTL.
func (c *BatchCache) Set(ctx context.Context, key string, batch *paging.Batch) error {
	if c.rc == nil {
		err := errors.New("redis client is nil, cannot set cache")
		c.collector.RedisCommand("set", err)
		return err
	}
	if batch == nil {
		return errors.New("cannot cache a nil batch")
	}

	raw, err := bson.Marshal(batch)
	if err != nil {
		c.collector.RedisCommand("marshal", err)
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	err = c.rc.Set(ctx, c.Key(key), raw, c.ttl).Err()
	c.collector.RedisCommand("set", err)
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes a cached batch.
func (c *BatchCache) Delete(ctx context.Context, key string) error {
	if c.rc == nil {
		return errors.New("redis client is nil, cannot delete cache")
	}
	err := c.rc.Del(ctx, c.Key(key)).Err()
	c.collector.RedisCommand("del", err)
	if err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// NewRedisClient connects to the configured Redis server.
func NewRedisClient(ctx context.Context, conf *config.Redis) (*redis.Client, error) {
	if !conf.Enabled() {
		return nil, errors.New("redis configuration is nil or empty")
	}

	rc := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Username:     conf.Username,
		Password:     conf.Password,
		DB:           conf.Db,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		DialTimeout:  conf.DialTimeout,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return rc, nil
}
