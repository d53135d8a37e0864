package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   atomic.Int32
	delay   time.Duration
	err     error
	catalog *Catalog
}

func (s *countingSource) Snapshot(context.Context) (*Catalog, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	if s.err != nil {
		return nil, s.err
	}
	return s.catalog, nil
}

func TestCachedSource_ServesFromCacheWithinTTL(t *testing.T) {
	src := &countingSource{catalog: New(domain.Product{ID: "1"})}
	cached := NewCachedSource(src, time.Minute)

	for i := 0; i < 3; i++ {
		c, err := cached.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, c.Len())
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCachedSource_ReloadsAfterTTL(t *testing.T) {
	src := &countingSource{catalog: New()}
	cached := NewCachedSource(src, time.Minute)
	now := time.Now()
	cached.now = func() time.Time { return now }

	_, err := cached.Snapshot(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cached.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_Invalidate(t *testing.T) {
	src := &countingSource{catalog: New()}
	cached := NewCachedSource(src, time.Hour)

	_, _ = cached.Snapshot(context.Background())
	cached.Invalidate()
	_, _ = cached.Snapshot(context.Background())

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSource_ErrorNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("db down")}
	cached := NewCachedSource(src, time.Hour)

	_, err := cached.Snapshot(context.Background())
	require.Error(t, err)

	src.err = nil
	src.catalog = New(domain.Product{ID: "1"})
	c, err := cached.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCachedSource_ConcurrentLoadsCollapse(t *testing.T) {
	src := &countingSource{catalog: New(), delay: 100 * time.Millisecond}
	cached := NewCachedSource(src, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cached.Snapshot(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}
