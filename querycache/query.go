package querycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
)

// Query is the capability the interceptors wrap. Describe captures the query's
// identity; Execute runs it against the backing database using d, which may
// differ from Describe's result (server side projection strips the fields).
type Query interface {
	Describe() cache.Descriptor
	Execute(ctx context.Context, d cache.Descriptor) (any, error)
}

// QueryFunc adapts a descriptor and a function to the Query interface.
type QueryFunc struct {
	Descriptor cache.Descriptor
	Fn         func(ctx context.Context, d cache.Descriptor) (any, error)
}

var _ Query = QueryFunc{}

func (q QueryFunc) Describe() cache.Descriptor { return q.Descriptor.Clone() }

func (q QueryFunc) Execute(ctx context.Context, d cache.Descriptor) (any, error) {
	return q.Fn(ctx, d)
}
