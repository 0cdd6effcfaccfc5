package cache

import (
	"context"
	"errors"
	"log"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const DefaultL1TTL = 30 * time.Second

// MultiLevelCache reads through a process-local L1 to redis (L2). With an L2
// configured, L1 entries live at most l1TTL. Redis failures on Get count as
// misses.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	l1TTL   time.Duration
}

// NewMultiLevelCache returns an L1-only cache when l2 is nil.
func NewMultiLevelCache(l2 *RedisCache, breakerConfig *CircuitBreakerConfig, l1TTL time.Duration) *MultiLevelCache {
	if l1TTL <= 0 {
		l1TTL = DefaultL1TTL
	}

	return &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      l2,
		breaker: NewCircuitBreaker(breakerConfig),
		metrics: NewCacheMetrics(),
		l1TTL:   l1TTL,
	}
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	found := false
	err := c.breaker.Execute(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		c.recordL2Error("get", key, err)
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}
	if !found {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	if err := c.l1.Set(ctx, key, dest, c.l1TTL); err != nil {
		log.Printf("cache: failed to backfill %s: %v", key, err)
	}
	return nil
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	l1TTL := ttl
	if c.l2 != nil && l1TTL > c.l1TTL {
		l1TTL = c.l1TTL
	}
	if err := c.l1.Set(ctx, key, value, l1TTL); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Set(ctx, key, value, ttl)
	})
	if err != nil {
		c.recordL2Error("set", key, err)
		if errors.Is(err, ErrCircuitBreakerOpen) {
			return nil
		}
		return err
	}
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	c.l1.Delete(ctx, keys...)
	c.metrics.RecordDelete()

	if c.l2 == nil {
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Delete(ctx, keys...)
	})
	if err != nil {
		c.recordL2Error("delete", "", err)
		if errors.Is(err, ErrCircuitBreakerOpen) {
			return ErrCacheDown
		}
		return err
	}
	return nil
}

func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Metrics() MetricsSnapshot {
	return c.metrics.Snapshot()
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
		"breaker": c.breaker.GetStats(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}

	return stats
}

func (c *MultiLevelCache) recordL2Error(op, key string, err error) {
	c.metrics.RecordError()
	if errors.Is(err, ErrCircuitBreakerOpen) {
		return
	}
	log.Printf("cache: redis %s %s failed: %v", op, key, err)
}
