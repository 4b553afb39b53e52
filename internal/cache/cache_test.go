package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetOrComputeCachesUntilExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(10, WithMemoryClock(clk.Now))
	c := New[payload](store, time.Minute)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (payload, error) {
		calls++
		return payload{Name: "terrazza", Count: calls}, nil
	}

	v, err := c.GetOrCompute(ctx, "consolidated:La_Terrazza:2025", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count)

	clk.Advance(30 * time.Second)
	v, err = c.GetOrCompute(ctx, "consolidated:La_Terrazza:2025", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count, "hit within ttl")

	clk.Advance(31 * time.Second)
	v, err = c.GetOrCompute(ctx, "consolidated:La_Terrazza:2025", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count, "recomputed after expiry")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(2), stats.Computes)
	assert.Equal(t, "1m0s", stats.TTL)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	c := New[payload](NewMemoryStore(10), 0)
	ctx := context.Background()

	calls := 0
	compute := func(context.Context) (payload, error) {
		calls++
		return payload{Count: calls}, nil
	}

	_, err := c.GetOrCompute(ctx, "k", 0, compute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "k"))

	v, err := c.GetOrCompute(ctx, "k", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, DefaultTTL, c.TTL())
}

func TestComputeErrorsAreNotCached(t *testing.T) {
	c := New[payload](NewMemoryStore(10), time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := c.GetOrCompute(ctx, "k", 0, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute(ctx, "k", 0, func(context.Context) (payload, error) {
		return payload{Name: "ok"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Name)
}

func TestHitsReturnIndependentCopies(t *testing.T) {
	c := New[*payload](NewMemoryStore(10), time.Minute)
	ctx := context.Background()
	compute := func(context.Context) (*payload, error) { return &payload{Name: "a"}, nil }

	_, err := c.GetOrCompute(ctx, "k", 0, compute)
	require.NoError(t, err)

	first, err := c.GetOrCompute(ctx, "k", 0, compute)
	require.NoError(t, err)
	first.Name = "mutated"

	second, err := c.GetOrCompute(ctx, "k", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, "a", second.Name)
}

func TestConcurrentMissesShareOneComputation(t *testing.T) {
	c := New[payload](NewMemoryStore(10), time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (payload, error) {
		calls.Add(1)
		<-release
		return payload{Name: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]payload, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCompute(ctx, "k", 0, compute)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, r := range results {
		assert.Equal(t, "shared", r.Name)
	}
}

func TestObserverSeesHitsAndMisses(t *testing.T) {
	var hits, misses int
	c := New[payload](NewMemoryStore(10), time.Minute, WithObserver[payload](func(_ context.Context, _ string, hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))
	ctx := context.Background()
	compute := func(context.Context) (payload, error) { return payload{}, nil }

	_, _ = c.GetOrCompute(ctx, "k", 0, compute)
	_, _ = c.GetOrCompute(ctx, "k", 0, compute)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestBrokenStoreDegradesToCompute(t *testing.T) {
	store := NewRedisStore(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}, "kross:")
	defer store.Close()

	c := New[payload](store, time.Minute)
	v, err := c.GetOrCompute(context.Background(), "k", 0, func(context.Context) (payload, error) {
		return payload{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v.Name)
	assert.GreaterOrEqual(t, c.Stats().Failures, int64(2))

	assert.Error(t, store.Ping(context.Background()))
	assert.Error(t, c.Invalidate(context.Background(), "k"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "consolidated:Lavagnini:2025", Key("consolidated", "Lavagnini", 2025))
}
