package cache

import (
	"context"
	"time"
)

// KeyCodec derives a cache key from a query descriptor.
// It is responsible for producing stable keys across calls.
type KeyCodec interface {
	DeriveKey(d Descriptor) string
}

// Store is the key/value collaborator every interceptor reads from and writes to.
//
// TTL semantics are fixed by contract:
//   - ttl == 0 keeps the entry until it is deleted, cleared or evicted for capacity
//   - ttl > 0 expires the entry ttl after it was written
//   - ttl < 0 uses the store default TTL
//
// Overwriting an existing key resets its expiry.
type Store interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// DefaultQueryTTL is the directive TTL applied when a query opts in without one.
const DefaultQueryTTL = 1200 * time.Second

// DefaultSetTTL is the TTL used by ambient writes that do not specify one.
const DefaultSetTTL = 1_200_000 * time.Millisecond

// UseStoreDefaultTTL asks the store to apply its configured default TTL.
const UseStoreDefaultTTL time.Duration = -1
