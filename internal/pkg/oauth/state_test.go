package oauth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestStateStore_GenerateAndValidate(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(client)
	ctx := context.Background()

	state, err := store.GenerateState(ctx)
	require.NoError(t, err)
	assert.Len(t, state, 64) // 32 random bytes hex-encoded

	assert.NoError(t, store.ValidateState(ctx, state))
}

func TestStateStore_ValidateConsumesState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(client)
	ctx := context.Background()

	state, err := store.GenerateState(ctx)
	require.NoError(t, err)

	require.NoError(t, store.ValidateState(ctx, state))

	// Second validation of the same state must fail
	assert.Error(t, store.ValidateState(ctx, state))
}

func TestStateStore_ValidateUnknownState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(client)

	assert.Error(t, store.ValidateState(context.Background(), "never-issued"))
}

func TestStateStore_ValidateEmptyState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(client)

	assert.Error(t, store.ValidateState(context.Background(), ""))
}

func TestStateStore_StatesAreUnique(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewStateStore(client)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		state, err := store.GenerateState(ctx)
		require.NoError(t, err)
		assert.False(t, seen[state])
		seen[state] = true
	}
}
