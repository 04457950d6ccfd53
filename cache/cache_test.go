package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		var out []menuItem
		hit, err := store.Get(ctx, "nope", &out)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("set then get", func(t *testing.T) {
		in := []menuItem{{Name: "Borscht", Price: 450}}
		require.NoError(t, store.Set(ctx, KeyMenu, in, time.Minute))

		var out []menuItem
		hit, err := store.Get(ctx, KeyMenu, &out)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, in, out)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, KeyCategories, []string{"hot"}, time.Minute))
		require.NoError(t, store.Delete(ctx, KeyCategories))

		var out []string
		hit, err := store.Get(ctx, KeyCategories, &out)
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "short", "value", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	var out string
	hit, err := store.Get(ctx, "short", &out)
	require.NoError(t, err)
	assert.False(t, hit, "expired entry must read as a miss")
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(srv.Addr(), "", 0))
	runStoreTests(t, store)
}

func TestRedisStoreExpiry(t *testing.T) {
	srv := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(srv.Addr(), "", 0))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "value", time.Second))
	srv.FastForward(2 * time.Second)

	var out string
	hit, err := store.Get(ctx, "short", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestServiceInvalidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	require.NoError(t, svc.Store().Set(ctx, KeyMenu, []string{"a"}, time.Minute))
	require.NoError(t, svc.Store().Set(ctx, DishKey(7), "dish", time.Minute))
	require.NoError(t, svc.Store().Set(ctx, KeyTablesActive, []string{"t"}, time.Minute))

	require.NoError(t, svc.InvalidateMenu(ctx))
	require.NoError(t, svc.InvalidateDish(ctx, 7))

	var out interface{}
	hit, _ := svc.Store().Get(ctx, KeyMenu, &out)
	assert.False(t, hit)
	hit, _ = svc.Store().Get(ctx, DishKey(7), &out)
	assert.False(t, hit)

	// tables untouched by menu invalidation
	hit, _ = svc.Store().Get(ctx, KeyTablesActive, &out)
	assert.True(t, hit)
}
