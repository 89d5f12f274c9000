package querycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
)

// AggregateInterceptor caches aggregation output. Results are never hydrated
// or projected: rows that are documents come back as []Document and any other
// output is returned as the backing query produced it.
type AggregateInterceptor struct {
	gate
	cache *Cache
	query Query
}

var _ Query = (*AggregateInterceptor)(nil)

// Cache opts the aggregation into caching.
func (a *AggregateInterceptor) Cache(args ...any) *AggregateInterceptor {
	a.optIn(args)
	return a
}

func (a *AggregateInterceptor) Cached() bool { return a.snapshot().directive != nil }

func (a *AggregateInterceptor) Directive() (cache.Directive, bool) { return a.current() }

func (a *AggregateInterceptor) Describe() cache.Descriptor { return a.query.Describe() }

func (a *AggregateInterceptor) Exec(ctx context.Context, callbacks ...Callback) (any, error) {
	return runWithCallbacks(ctx, a.exec, callbacks)
}

func (a *AggregateInterceptor) Go(ctx context.Context, callbacks ...Callback) <-chan Outcome {
	return runAsync(ctx, a.exec, callbacks)
}

func (a *AggregateInterceptor) exec(ctx context.Context) (any, error) {
	return a.Execute(ctx, a.query.Describe())
}

// Execute runs the caching protocol for the aggregation described by d.
func (a *AggregateInterceptor) Execute(ctx context.Context, d cache.Descriptor) (any, error) {
	s := a.snapshot()
	if s.err != nil {
		return nil, s.err
	}
	if s.directive == nil {
		return a.query.Execute(ctx, d)
	}
	dir := *s.directive

	d.Op = cache.OpAggregate
	key := dir.Key
	if key == "" {
		key = a.cache.codec.DeriveKey(d)
	}

	payload, err := a.cache.resolve(ctx, key, d, dir.TTL, func(ctx context.Context) (any, error) {
		return a.query.Execute(ctx, d)
	})
	if err != nil || payload == nil {
		return nil, err
	}
	result, err := a.cache.results.decode(d, nil, payload)
	if err != nil {
		return nil, a.cache.discard(ctx, key, err)
	}
	return result, nil
}
