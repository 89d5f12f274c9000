package querycache

import (
	"context"
	"sync/atomic"

	"github.com/goliatone/go-query-cache/cache"
)

// gate holds the opt-in state shared by both interceptors. A nil directive is
// the passthrough state. The state is swapped atomically so Cache may be
// called while an execution started by Go is running; that execution keeps
// the state it started with.
type gate struct {
	state atomic.Pointer[gateState]
}

type gateState struct {
	directive *cache.Directive
	err       error
}

func (g *gate) optIn(args []any) {
	d, err := cache.NewDirective(args...)
	if err != nil {
		g.state.Store(&gateState{err: err})
		return
	}
	g.state.Store(&gateState{directive: &d})
}

func (g *gate) snapshot() gateState {
	if s := g.state.Load(); s != nil {
		return *s
	}
	return gateState{}
}

func (g *gate) current() (cache.Directive, bool) {
	s := g.snapshot()
	if s.directive == nil {
		return cache.Directive{}, false
	}
	return *s.directive, true
}

// Interceptor is a caching decorator over a Query.
type Interceptor struct {
	gate
	cache *Cache
	query Query
}

var _ Query = (*Interceptor)(nil)

// Cache opts the query into caching. See cache.NewDirective for the accepted
// argument forms. An invalid form is reported by the next execution.
func (i *Interceptor) Cache(args ...any) *Interceptor {
	i.optIn(args)
	return i
}

// Cached reports whether the query opted into caching.
func (i *Interceptor) Cached() bool { return i.snapshot().directive != nil }

// Directive returns the normalized directive, if any.
func (i *Interceptor) Directive() (cache.Directive, bool) { return i.current() }

// Describe returns the wrapped query's descriptor.
func (i *Interceptor) Describe() cache.Descriptor { return i.query.Describe() }

// Exec runs the query with its own descriptor. Every callback receives the
// returned result and error.
func (i *Interceptor) Exec(ctx context.Context, callbacks ...Callback) (any, error) {
	return runWithCallbacks(ctx, i.exec, callbacks)
}

// Go runs Exec on a new goroutine and delivers the outcome on the returned
// channel.
func (i *Interceptor) Go(ctx context.Context, callbacks ...Callback) <-chan Outcome {
	return runAsync(ctx, i.exec, callbacks)
}

func (i *Interceptor) exec(ctx context.Context) (any, error) {
	return i.Execute(ctx, i.query.Describe())
}

// Execute runs the caching protocol for d.
func (i *Interceptor) Execute(ctx context.Context, d cache.Descriptor) (any, error) {
	s := i.snapshot()
	if s.err != nil {
		return nil, s.err
	}
	if s.directive == nil {
		return i.query.Execute(ctx, d)
	}
	dir := *s.directive

	var projection cache.Projection
	if dir.ServerSideProjection && len(d.Fields) > 0 {
		projection = d.Fields
		d = d.WithoutFields()
	}

	key := dir.Key
	if key == "" {
		key = i.cache.codec.DeriveKey(d)
	}

	payload, err := i.cache.resolve(ctx, key, d, dir.TTL, func(ctx context.Context) (any, error) {
		return i.query.Execute(ctx, d)
	})
	if err != nil || payload == nil {
		return nil, err
	}
	result, err := i.cache.results.decode(d, projection, payload)
	if err != nil {
		return nil, i.cache.discard(ctx, key, err)
	}
	return result, nil
}
