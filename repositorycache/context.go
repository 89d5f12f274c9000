package repositorycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
)

type directiveContextKey struct{}

// WithCache opts every cached read made with the returned context into
// caching under dir.
func WithCache(ctx context.Context, dir cache.Directive) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, directiveContextKey{}, dir)
}

// WithCacheArgs is WithCache using the same argument forms as a query's
// Cache method.
func WithCacheArgs(ctx context.Context, args ...any) (context.Context, error) {
	dir, err := cache.NewDirective(args...)
	if err != nil {
		return ctx, err
	}
	return WithCache(ctx, dir), nil
}

func directiveFromContext(ctx context.Context) (cache.Directive, bool) {
	if ctx == nil {
		return cache.Directive{}, false
	}
	dir, ok := ctx.Value(directiveContextKey{}).(cache.Directive)
	return dir, ok
}
