package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateGetAbandon(t *testing.T) {
	f := newFixture(t)
	r := NewRegistry(f.deps)

	s, err := r.Create(context.Background(), f.identity, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Abandon(s.ID()))
	assert.True(t, s.Abandoned())
	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Abandon(s.ID()), ErrSessionNotFound)
}

func TestRegistry_AbandonDuringSubmit(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `[{"productId":42,"quantity":2}]`)
	f.orders.release = make(chan struct{})
	f.orders.entered = make(chan struct{}, 1)
	r := NewRegistry(f.deps)
	s, err := r.Create(context.Background(), f.identity, nil)
	require.NoError(t, err)
	toReview(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-f.orders.entered
	require.NoError(t, r.Abandon(s.ID()))
	close(f.orders.release)

	require.NoError(t, <-done)
	assert.Zero(t, r.Len())
	assert.True(t, s.Cart().IsEmpty())
}

func TestRegistry_Sweep(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.deps.Now = func() time.Time { return now }
	r := NewRegistry(f.deps)

	old, err := r.Create(context.Background(), f.identity, nil)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	fresh, err := r.Create(context.Background(), f.identity, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.True(t, old.Abandoned())
	_, err = r.Get(fresh.ID())
	assert.NoError(t, err)
}
