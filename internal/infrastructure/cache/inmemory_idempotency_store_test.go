package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	store := newInMemoryIdempotencyStore(clock.Now, time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		store, _ := newTestStore(t)

		isNew, err := store.MarkProcessed(ctx, "payment:t1:k1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "payment:t1:k1", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired key can be marked again", func(t *testing.T) {
		store, clock := newTestStore(t)

		_, err := store.MarkProcessed(ctx, "k", time.Minute)
		require.NoError(t, err)
		clock.Advance(time.Minute)

		isNew, err := store.MarkProcessed(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("concurrent marks admit exactly one", func(t *testing.T) {
		store, _ := newTestStore(t)
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := store.MarkProcessed(ctx, "same", time.Hour); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	ok, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	ok, _ = store.IsProcessed(ctx, "k")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	ok, _ = store.IsProcessed(ctx, "k")
	assert.False(t, ok)
}

func TestInMemoryIdempotencyStore_Forget(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Forget(ctx, "k"))

	isNew, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "forgotten key is free again")

	assert.NoError(t, store.Forget(ctx, "never-seen"))
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	clock.Advance(5 * time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
