// Package querycache wraps query execution with a read-through result cache.
//
// A Query describes itself with a cache.Descriptor and executes against a
// backing database. Wrapping it returns an Interceptor that behaves exactly
// like the query until caching is requested:
//
//	qc, _ := querycache.New(store, registry)
//	users, err := querycache.All[User](qc.Wrap(query).Cache(60).Exec(ctx))
//
// Cache accepts the positional form (ttl, key, serverSideProjection) or one of
// two shorthands: a single string is an override key, a single bool selects
// server side projection. Both keep the default 1200 second TTL.
//
// # Result reconstruction
//
// Results are stored as msgpack payloads and reconstructed from the live
// descriptor on every read, so a miss and the following hit return the same
// shape:
//
//   - count operations return an int64
//   - distinct returns the list of values
//   - lean queries return Document values
//   - other queries are hydrated through the Model registered under the
//     descriptor's model name
//
// With server side projection the requested fields are removed from the
// backing query and from key derivation. The full payload is cached once and
// every read keeps only the requested fields plus the model's identity field.
//
// # Ambient entry points
//
// ClearCache, IsCached and SetCache operate on the same store directly.
// Remember offers the same read-through flow for arbitrary typed results.
// Writes are skipped while DISABLE_DB_MEMCACHE is "true"; reads are still served.
package querycache
