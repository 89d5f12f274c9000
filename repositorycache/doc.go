// Package repositorycache provides cached repository decorators for go-repository-bun.
//
// # Overview
//
// CachedRepository wraps a repository.Repository[T] and routes its read
// operations through a querycache.Cache. Caching is opt-in per call: a read is
// cached only when its context carries a directive.
//
//	base := repository.NewRepository[User](db, handlers)
//	cached := repositorycache.New[User](base, qc)
//
//	// passthrough
//	user, err := cached.GetByID(ctx, "user-123")
//
//	// cached for 60 seconds under the derived key
//	cacheCtx, err := repositorycache.WithCacheArgs(ctx, 60)
//	user, err = cached.GetByID(cacheCtx, "user-123")
//
// # Cached vs Pass-through Operations
//
// Get, GetByID, GetByIdentifier, List and Count are cached when opted in.
// Writes, transaction variants (*Tx), Raw and Handlers always go straight to
// the base repository.
//
// # Keys
//
// Entries are namespaced by the plural snake_case type name ("blog_posts" for
// BlogPost) and keyed by the method name and its arguments. Selection criteria
// are closures whose captured values cannot be part of a derived key, so a
// cached read with criteria must name its own key or it fails with
// ErrCriteriaNeedKey:
//
//	cacheCtx, _ := repositorycache.WithCacheArgs(ctx, 60, "users:active:"+team)
//	users, total, err := cached.List(cacheCtx, byTeam(team))
//
// # Invalidation
//
// Writes do not invalidate. Entries live until their TTL expires or they are
// removed with querycache.Cache.ClearCache; KeyFor returns the derived key of a
// read for targeted clearing.
//
// # Error Handling
//
// Errors from the base repository are returned unchanged and never cached.
// Store failures surface as wrapped errors from the read.
//
// # See Also
//
// For key derivation and store configuration see the cache package. For
// container based setup see pkg/di.
package repositorycache
