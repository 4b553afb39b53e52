package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	cachedAt  time.Time
	expiresAt time.Time
	hits      int
}

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	maxSize   int
	hitCount  int64
	missCount int64
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithMemoryClock replaces the clock used for expiry
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store holding at most maxSize entries. A non-positive maxSize
// disables storage entirely.
func NewMemoryStore(maxSize int, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		maxSize:  maxSize,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a live entry
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		if ok {
			delete(s.entries, key)
		}
		s.missCount++
		return nil, false, nil
	}

	entry.hits++
	s.entries[key] = entry
	s.hitCount++
	return entry.value, true, nil
}

// Set stores value until ttl elapses, evicting the oldest entry when full
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize <= 0 || ttl <= 0 {
		return nil
	}
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	now := s.now()
	s.entries[key] = memoryEntry{value: value, cachedAt: now, expiresAt: now.Add(ttl)}
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// MemoryStats is a point-in-time view of the store
type MemoryStats struct {
	Entries   int     `json:"entries"`
	MaxSize   int     `json:"max_size"`
	HitCount  int64   `json:"hit_count"`
	MissCount int64   `json:"miss_count"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Stats returns hit and size statistics
func (s *MemoryStore) Stats() MemoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.hitCount + s.missCount
	ratio := 0.0
	if total > 0 {
		ratio = float64(s.hitCount) / float64(total)
	}
	return MemoryStats{
		Entries:   len(s.entries),
		MaxSize:   s.maxSize,
		HitCount:  s.hitCount,
		MissCount: s.missCount,
		HitRatio:  ratio,
	}
}

// StartJanitor removes expired entries every interval until Stop is called
func (s *MemoryStore) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.purgeExpired()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop halts the janitor
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *MemoryStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *MemoryStore) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range s.entries {
		if oldestKey == "" || entry.cachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.cachedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
