package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*sturdycStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store, err := NewSturdycStore(DefaultConfig(), WithClock(clock.Now))
	require.NoError(t, err)
	return store, clock
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name:      "invalid capacity - zero",
			cfg:       Config{Capacity: 0, NumShards: 256, TTL: time.Minute, EvictionPercentage: 10},
			wantField: "Capacity",
		},
		{
			name:      "invalid capacity - negative",
			cfg:       Config{Capacity: -5, NumShards: 256, TTL: time.Minute, EvictionPercentage: 10},
			wantField: "Capacity",
		},
		{
			name:      "invalid num shards - zero",
			cfg:       Config{Capacity: 1000, NumShards: 0, TTL: time.Minute, EvictionPercentage: 10},
			wantField: "NumShards",
		},
		{
			name:      "invalid TTL - zero",
			cfg:       Config{Capacity: 1000, NumShards: 256, TTL: 0, EvictionPercentage: 10},
			wantField: "TTL",
		},
		{
			name:      "invalid eviction percentage - too low",
			cfg:       Config{Capacity: 1000, NumShards: 256, TTL: time.Minute, EvictionPercentage: 0},
			wantField: "EvictionPercentage",
		},
		{
			name:      "invalid eviction percentage - too high",
			cfg:       Config{Capacity: 1000, NumShards: 256, TTL: time.Minute, EvictionPercentage: 101},
			wantField: "EvictionPercentage",
		},
		{
			name:      "invalid eviction interval - negative",
			cfg:       Config{Capacity: 1000, NumShards: 256, TTL: time.Minute, EvictionPercentage: 10, EvictionInterval: -time.Second},
			wantField: "EvictionInterval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "expected validation.Errors, got %T", err)
			assert.Contains(t, verrs, tt.wantField)
		})
	}
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{})
	require.Error(t, err)
	assert.Nil(t, store)
}

func TestToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.ToSturdycOptions())

	cfg.EvictionInterval = time.Second
	assert.Len(t, cfg.ToSturdycOptions(), 1)
}

func TestSturdycStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", []byte("payload"), time.Minute))

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)
}

func TestSturdycStore_TTL(t *testing.T) {
	ctx := context.Background()

	t.Run("positive ttl expires after duration", func(t *testing.T) {
		store, clock := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", "v", 10*time.Second))

		clock.Advance(9 * time.Second)
		_, found, _ := store.Get(ctx, "k")
		assert.True(t, found)

		clock.Advance(time.Second)
		_, found, _ = store.Get(ctx, "k")
		assert.False(t, found)
		assert.Equal(t, 0, store.Len(), "expired entry should be removed on read")
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		store, clock := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", "v", 0))

		clock.Advance(24 * 365 * time.Hour)
		_, found, _ := store.Get(ctx, "k")
		assert.True(t, found)
	})

	t.Run("negative ttl uses store default", func(t *testing.T) {
		store, clock := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", "v", -1))

		clock.Advance(DefaultConfig().TTL - time.Second)
		_, found, _ := store.Get(ctx, "k")
		assert.True(t, found)

		clock.Advance(time.Second)
		_, found, _ = store.Get(ctx, "k")
		assert.False(t, found)
	})

	t.Run("overwrite resets expiry", func(t *testing.T) {
		store, clock := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", "v1", 10*time.Second))

		clock.Advance(8 * time.Second)
		require.NoError(t, store.Set(ctx, "k", "v2", 10*time.Second))

		clock.Advance(8 * time.Second)
		got, found, _ := store.Get(ctx, "k")
		require.True(t, found)
		assert.Equal(t, "v2", got)
	})
}

func TestSturdycStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, key, key, 0))
	}

	require.NoError(t, store.Delete(ctx, "a"))
	_, found, _ := store.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "b")
	assert.True(t, found)

	require.NoError(t, store.Clear(ctx))
	for _, key := range []string{"b", "c"} {
		_, found, _ := store.Get(ctx, key)
		assert.False(t, found, "key %s should be cleared", key)
	}
	assert.Equal(t, 0, store.Len())
}
