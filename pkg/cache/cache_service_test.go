package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	t.Run("miss", func(t *testing.T) {
		var e entry
		assert.ErrorIs(t, c.Get(ctx, "identity:none", &e), ErrCacheMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "identity:1", entry{ID: "1", Role: "admin"}, time.Minute))

		var e entry
		require.NoError(t, c.Get(ctx, "identity:1", &e))
		assert.Equal(t, "admin", e.Role)
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "identity:2", entry{ID: "2"}, -time.Second))
		var e entry
		assert.ErrorIs(t, c.Get(ctx, "identity:2", &e), ErrCacheMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "identity:3", entry{ID: "3"}, time.Minute))
		require.NoError(t, c.Set(ctx, "identity:4", entry{ID: "4"}, time.Minute))

		require.NoError(t, c.Delete(ctx, "identity:3"))

		var e entry
		assert.ErrorIs(t, c.Get(ctx, "identity:3", &e), ErrCacheMiss)
		require.NoError(t, c.Get(ctx, "identity:4", &e))
		assert.Equal(t, "4", e.ID)
	})
}
