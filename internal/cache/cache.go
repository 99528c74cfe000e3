// Package cache holds the process-local snapshot of the last sheet read.
// The cache exists to avoid refetching the whole table on every observation;
// it carries no cross-process guarantee, so two sessions can legitimately
// hold diverging snapshots until one of them writes and invalidates.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kmori/junban/internal/sheet"
)

// TableCache is a time- or command-invalidated copy of the full sheet. A TTL
// of zero disables automatic expiry entirely: the snapshot then lives until
// Invalidate is called. The zero staleness window is a deployment choice,
// not a correctness property.
type TableCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	table     sheet.Table
	populated bool
	fetchedAt time.Time
}

// New returns an empty cache with the given expiry policy.
func New(ttl time.Duration) *TableCache {
	return &TableCache{ttl: ttl, now: time.Now}
}

// Get returns the cached table when present and unexpired, otherwise runs
// fetch, stores the result and returns it. A fetch failure leaves any prior
// snapshot in place so a retry observes the pre-failure state. The returned
// table is a copy; mutating it does not touch the cache.
func (c *TableCache) Get(ctx context.Context, fetch func(context.Context) (sheet.Table, error)) (sheet.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.populated && !c.expired() {
		return c.table.Clone(), nil
	}
	t, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.table = t.Clone()
	c.populated = true
	c.fetchedAt = c.now()
	return t, nil
}

// Invalidate unconditionally discards the snapshot; the next Get fetches.
func (c *TableCache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.populated = false
	c.mu.Unlock()
}

func (c *TableCache) expired() bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(c.fetchedAt) >= c.ttl
}
