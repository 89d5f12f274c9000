// Package cache provides the data model, key derivation and store contract for query caching.
//
// # Overview
//
// This package exports the building blocks shared by every interceptor:
//
//   - Descriptor: an immutable snapshot of a query's identity (model, operation,
//     conditions, sort, skip/limit, projection, options, distinct path, pipeline)
//   - Directive: per-query caching configuration (TTL, override key, projection mode)
//   - KeyCodec: derives a stable cache key from a Descriptor
//   - Store: the get/set/delete/clear collaborator holding cached payloads
//
// # Key Derivation Strategy
//
// The default key codec serializes a descriptor into a canonical string and
// digests it with xxhash64:
//
//	codec := cache.NewDefaultKeyCodec()
//	key := codec.DeriveKey(cache.Descriptor{Model: "users", Op: cache.OpFind})
//	// users::find::<16 hex chars>
//
// Canonicalization is explicit:
//
//   - Maps: sorted key-value pairs, so declaration order never changes a key
//   - Strings: quoted, so "1" and 1 produce different keys
//   - Slices/arrays: recursive, order preserving (sort priority matters)
//   - Structs: exported fields with name:value pairs, TextMarshaler types use their text form
//   - Function pointers: %p formatting, stable within a single process only
//
// The projection is part of the key whenever it is present on the descriptor.
// Interceptors running in server side projection mode strip it before deriving
// the key, so all projections of one query share a single cached payload.
//
// # Directives
//
// NewDirective accepts the same shorthand forms as the query opt-in method:
//
//	cache.NewDirective()              // 1200s TTL
//	cache.NewDirective(60)            // 60s TTL
//	cache.NewDirective("users:all")   // override key, default TTL
//	cache.NewDirective(true)          // server side projection, default TTL
//	cache.NewDirective(60, "k", true) // full positional form
//
// # Store Semantics
//
// A TTL of zero keeps an entry until it is deleted or cleared, a positive TTL
// expires it after that duration, and a negative TTL asks the store for its
// configured default. Overwriting a key resets its expiry. NewStore builds the
// default sturdyc backed implementation.
//
// # Configuration
//
// Config can be built by hand, from DefaultConfig, or from QUERYCACHE_*
// environment variables with LoadConfig. Setting DISABLE_DB_MEMCACHE=true turns
// every cache write into a no-op while reads are still served; see WritesDisabled.
//
// # See Also
//
// For query interception and result rehydration, see the querycache package.
package cache
