package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "current_game", `{"status":"waiting"}`))
	v, ok, err := m.Get(ctx, "current_game")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"status":"waiting"}`, v)

	require.NoError(t, m.Set(ctx, "current_game", `{"status":"playing"}`))
	v, _, _ = m.Get(ctx, "current_game")
	assert.Equal(t, `{"status":"playing"}`, v)

	require.NoError(t, m.Delete(ctx, "current_game"))
	_, ok, err = m.Get(ctx, "current_game")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "current_game", "a"))
	require.NoError(t, m.Set(ctx, "player:alice", "b"))

	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"current_game", "player:alice"}, keys)
}
