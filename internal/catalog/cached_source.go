package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedSource keeps the last snapshot for ttl and collapses concurrent reloads
// into a single call to the underlying source.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	sfg    singleflight.Group

	mu       sync.RWMutex
	cached   *Catalog
	loadedAt time.Time
}

func NewCachedSource(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *CachedSource) Snapshot(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	cached, loadedAt := c.cached, c.loadedAt
	c.mu.RUnlock()
	if cached != nil && c.now().Sub(loadedAt) < c.ttl {
		return cached, nil
	}

	v, err, _ := c.sfg.Do("catalog", func() (interface{}, error) {
		snapshot, err := c.source.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cached = snapshot
		c.loadedAt = c.now()
		c.mu.Unlock()
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// Invalidate forces the next Snapshot to reload.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}
