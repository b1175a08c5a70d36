package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("Missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "a", "1"))
		val, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "b", "2"))
		require.NoError(t, store.Delete(ctx, "b"))
		_, err := store.Get(ctx, "b")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-set"))
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sessions:g1", Key("sessions", "g1"))
	assert.Equal(t, "tenant:g1:settings", Key("tenant", "g1", "settings"))
}
