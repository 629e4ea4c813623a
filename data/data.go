// Package data wires the connections cursorpage reads pages through: the
// MongoDB manager and, when configured, the Redis page cache.
package data

import (
	"context"
	"errors"
	"time"

	"github.com/ncobase/cursorpage/data/cache"
	"github.com/ncobase/cursorpage/data/config"
	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/data/mongodb"
	"github.com/ncobase/cursorpage/logging/logger"
	"github.com/ncobase/cursorpage/paging"
	"github.com/redis/go-redis/v9"
)

// Data represents the data layer implementation
type Data struct {
	Mongo *mongodb.MongoManager
	Redis *redis.Client

	collector metrics.Collector
	keyPrefix string
}

// Option function type for configuring Data
type Option func(*Data)

// WithMetricsCollector sets the metrics collector
func WithMetricsCollector(collector metrics.Collector) Option {
	return func(d *Data) {
		if collector != nil {
			d.collector = collector
		}
	}
}

// New connects the data layer. A Redis connection failure disables the page
// cache instead of failing.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Data, func(), error) {
	if cfg == nil || cfg.MongoDB == nil {
		return nil, nil, errors.New("mongodb configuration is required")
	}

	d := &Data{collector: metrics.NoOpCollector{}}
	for _, opt := range opts {
		opt(d)
	}

	mgm, err := mongodb.NewMongoManager(ctx, cfg.MongoDB, d.collector)
	if err != nil {
		return nil, nil, err
	}
	d.Mongo = mgm

	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warnf(ctx, "page cache disabled: %v", err)
		} else {
			d.Redis = rc
			d.keyPrefix = cfg.Redis.KeyPrefix
		}
	}

	cleanup := func() {
		if errs := d.Close(context.Background()); len(errs) > 0 {
			logger.Errorf(context.Background(), "cleanup errors: %v", errs)
		}
	}
	return d, cleanup, nil
}

// GetMongoCollection returns a collection of the configured database.
// readOnly routes to a slave.
func (d *Data) GetMongoCollection(collName string, readOnly bool) (paging.Store, error) {
	if d.Mongo == nil {
		err := errors.New("mongodb manager not available")
		d.collector.MongoOperation("get_collection", err)
		return nil, err
	}

	coll, err := d.Mongo.Collection(collName, readOnly)
	d.collector.MongoOperation("get_collection", err)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// PageCache returns the Redis page cache, or nil when Redis is not
// connected.
func (d *Data) PageCache(ttl time.Duration) paging.BatchCache {
	if d.Redis == nil {
		return nil
	}
	return cache.NewBatchCacheWithMetrics(d.Redis, d.keyPrefix, ttl, d.collector)
}

// Health checks every connection.
func (d *Data) Health(ctx context.Context) error {
	var errs []error
	if d.Mongo != nil {
		errs = append(errs, d.Mongo.Health(ctx))
	}
	if d.Redis != nil {
		err := d.Redis.Ping(ctx).Err()
		d.collector.RedisCommand("ping", err)
		d.collector.HealthCheck("redis", err == nil)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetMetricsCollector returns the metrics collector
func (d *Data) GetMetricsCollector() metrics.Collector {
	return d.collector
}

// GetStats returns data layer statistics
func (d *Data) GetStats() map[string]any {
	if c, ok := d.collector.(*metrics.DataCollector); ok {
		return c.GetStats()
	}

	return map[string]any{
		"status":    "metrics_unavailable",
		"timestamp": time.Now(),
	}
}

// Close closes all data connections
func (d *Data) Close(ctx context.Context) []error {
	var errs []error

	if d.Mongo != nil {
		if err := d.Mongo.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
