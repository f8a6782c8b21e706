package subscriptions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitreon-labs/bitreon/internal/app/domain/subscription"
)

// Status is the resolved subscription state for one (subscriber, creator)
// pair, as fed to access decisions.
type Status struct {
	Subscribed   bool                       `json:"subscribed"`
	Subscription *subscription.Subscription `json:"subscription,omitempty"`
	ResolvedAt   time.Time                  `json:"resolved_at"`
}

// StatusCache memoizes resolved subscription status so that multiple content
// items on one page view do not trigger redundant contract reads. Entries
// expire on a short TTL and are additionally invalidated whenever a write for
// the key is submitted.
type StatusCache interface {
	Get(ctx context.Context, subscriber string, creatorID uint64) (Status, bool)
	Set(ctx context.Context, subscriber string, creatorID uint64, st Status)
	Invalidate(ctx context.Context, subscriber string, creatorID uint64)
}

// DefaultCacheTTL bounds staleness between write-invalidations. A few seconds
// is enough to cover one page view.
const DefaultCacheTTL = 15 * time.Second

func cacheKey(subscriber string, creatorID uint64) string {
	return fmt.Sprintf("%s:%d", subscriber, creatorID)
}

// =============================================================================
// In-Memory Cache
// =============================================================================

type memoryEntry struct {
	status    Status
	expiresAt time.Time
}

// MemoryCache is the default in-process StatusCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-process cache. A non-positive ttl falls back
// to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, subscriber string, creatorID uint64) (Status, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(subscriber, creatorID)]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return Status{}, false
	}
	return entry.status, true
}

func (c *MemoryCache) Set(_ context.Context, subscriber string, creatorID uint64, st Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(subscriber, creatorID)] = memoryEntry{
		status:    st,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *MemoryCache) Invalidate(_ context.Context, subscriber string, creatorID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(subscriber, creatorID))
}
