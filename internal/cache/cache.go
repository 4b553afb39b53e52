package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches how often snapshots are expected to change through manual uploads
const DefaultTTL = 60 * time.Second

// Compute produces the value for a missing key
type Compute[T any] func(ctx context.Context) (T, error)

// Observer is told about every lookup outcome
type Observer func(ctx context.Context, key string, hit bool)

// Cache is a typed get-or-compute cache over a byte Store
type Cache[T any] struct {
	store      Store
	defaultTTL time.Duration
	group      singleflight.Group
	observer   Observer
	logger     *slog.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
	failures atomic.Int64
}

// Option configures a Cache
type Option[T any] func(*Cache[T])

// WithObserver registers a lookup observer
func WithObserver[T any](o Observer) Option[T] {
	return func(c *Cache[T]) { c.observer = o }
}

// WithLogger sets the logger
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Cache[T]) { c.logger = l }
}

// New creates a cache. A non-positive defaultTTL falls back to DefaultTTL.
func New[T any](store Store, defaultTTL time.Duration, opts ...Option[T]) *Cache[T] {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	c := &Cache[T]{store: store, defaultTTL: defaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "cache"))
	return c
}

// TTL returns the default time-to-live
func (c *Cache[T]) TTL() time.Duration {
	return c.defaultTTL
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// A ttl of 0 uses the default. Store failures never fail the call; they only cost a
// recomputation. Compute errors are returned and nothing is cached.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute Compute[T]) (T, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if v, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		c.observe(ctx, key, true)
		return v, nil
	}
	c.misses.Add(1)
	c.observe(ctx, key, false)

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.computes.Add(1)
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}

		data, err := json.Marshal(v)
		if err != nil {
			c.failures.Add(1)
			c.logger.WarnContext(ctx, "Failed to encode cache value", slog.String("key", key), slog.String("error", err.Error()))
			return v, nil
		}
		if err := c.store.Set(ctx, key, data, ttl); err != nil {
			c.failures.Add(1)
			c.logger.WarnContext(ctx, "Failed to store cache value", slog.String("key", key), slog.String("error", err.Error()))
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Invalidate drops key so the next lookup recomputes
func (c *Cache[T]) Invalidate(ctx context.Context, key string) error {
	c.group.Forget(key)
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	c.logger.DebugContext(ctx, "Cache entry invalidated", slog.String("key", key))
	return nil
}

// Stats is a snapshot of cache counters
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Computes int64   `json:"computes"`
	Failures int64   `json:"failures"`
	HitRatio float64 `json:"hit_ratio"`
	TTL      string  `json:"ttl"`
}

// Stats returns the counters
func (c *Cache[T]) Stats() Stats {
	s := Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Failures: c.failures.Load(),
		TTL:      c.defaultTTL.String(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache[T]) lookup(ctx context.Context, key string) (T, bool) {
	var v T
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.failures.Add(1)
		c.logger.WarnContext(ctx, "Cache lookup failed, recomputing", slog.String("key", key), slog.String("error", err.Error()))
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.failures.Add(1)
		_ = c.store.Delete(ctx, key)
		return v, false
	}
	return v, true
}

func (c *Cache[T]) observe(ctx context.Context, key string, hit bool) {
	if c.observer != nil {
		c.observer(ctx, key, hit)
	}
}

// Key builds a colon separated cache key
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}
