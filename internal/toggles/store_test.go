package toggles

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func TestStore_Upsert(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	toggle, err := store.Upsert(ctx, "swap.paused", true)
	assert.NoError(t, err)
	assert.NotNil(t, toggle)
	assert.Equal(t, "swap.paused", toggle.Key)
	assert.True(t, toggle.Enabled)
	assert.NotZero(t, toggle.UpdatedAt)

	retrieved, err := store.Get(ctx, "swap.paused")
	assert.NoError(t, err)
	assert.Equal(t, toggle.Key, retrieved.Key)
	assert.Equal(t, toggle.Enabled, retrieved.Enabled)

	time.Sleep(time.Millisecond)
	toggle2, err := store.Upsert(ctx, "swap.paused", false)
	assert.NoError(t, err)
	assert.True(t, toggle2.UpdatedAt.After(toggle.UpdatedAt))

	retrieved, err = store.Get(ctx, "swap.paused")
	assert.NoError(t, err)
	assert.False(t, retrieved.Enabled)
}

func TestStore_Get_NotFound(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	toggle, err := store.Get(context.Background(), "nonexistent.toggle")
	assert.Error(t, err)
	assert.Equal(t, ErrNotFound, err)
	assert.Nil(t, toggle)
}

func TestStore_Enabled_Default(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Unset toggle falls back to the default.
	assert.False(t, store.Enabled(ctx, "swap.paused", false))
	assert.True(t, store.Enabled(ctx, "swap.paused", true))

	_, err = store.Upsert(ctx, "swap.paused", true)
	require.NoError(t, err)
	assert.True(t, store.Enabled(ctx, "swap.paused", false))
}

func TestStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, "swap.paused", true)
	require.NoError(t, err)

	err = store.Delete(ctx, "swap.paused")
	assert.NoError(t, err)

	_, err = store.Get(ctx, "swap.paused")
	assert.Equal(t, ErrNotFound, err)

	// Deleting a toggle that does not exist is not an error.
	err = store.Delete(ctx, "nonexistent.toggle")
	assert.NoError(t, err)
}

func TestStore_List(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, list)

	wanted := map[string]bool{
		"swap.paused":      true,
		"quotes.verbose":   false,
		"prereq.autobuild": true,
	}
	for key, enabled := range wanted {
		_, err := store.Upsert(ctx, key, enabled)
		require.NoError(t, err)
	}

	list, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 3)

	got := make(map[string]bool)
	for _, tog := range list {
		got[tog.Key] = tog.Enabled
	}
	for key, enabled := range wanted {
		actual, exists := got[key]
		assert.True(t, exists, "toggle %s should exist", key)
		assert.Equal(t, enabled, actual, "toggle %s should have correct value", key)
	}
}

func TestStore_KeyValidation(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	validKeys := []string{
		"swap.paused",
		"toggle.with.dots",
		"toggle123",
		"a",
	}
	for _, key := range validKeys {
		_, err := store.Upsert(ctx, key, true)
		assert.NoError(t, err, "key %s should be valid", key)
	}

	invalidKeys := []string{
		"",
		" ",
		"toggle with spaces",
		"toggle:with:colons",
		"toggle\twith\ttabs",
	}
	for _, key := range invalidKeys {
		_, err := store.Upsert(ctx, key, true)
		assert.Error(t, err, "key %s should be invalid", key)
	}
}
