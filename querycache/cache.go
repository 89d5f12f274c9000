package querycache

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"
)

// Cache binds a store, a model registry and a key codec. It wraps queries and
// serves the ambient cache entry points.
type Cache struct {
	store          cache.Store
	codec          cache.KeyCodec
	results        resultCodec
	logger         zerolog.Logger
	metrics        *metrics
	writesDisabled func() bool
	flight         *singleflight.Group
}

// New creates a Cache over store. registry may be nil when only lean, count
// and distinct queries are cached.
func New(store cache.Store, registry ModelRegistry, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, errors.Wrap(err, "querycache: create metrics")
	}

	c := &Cache{
		store:          store,
		codec:          o.codec,
		results:        resultCodec{registry: registry},
		logger:         o.logger,
		metrics:        m,
		writesDisabled: o.writesDisabled,
	}
	if o.singleFlight {
		c.flight = &singleflight.Group{}
	}
	return c, nil
}

// Store returns the underlying store.
func (c *Cache) Store() cache.Store { return c.store }

// KeyFor returns the key a query with descriptor d is cached under when no
// override key is given.
func (c *Cache) KeyFor(d cache.Descriptor) string {
	return c.codec.DeriveKey(d)
}

// Wrap returns an interceptor for q in passthrough state.
func (c *Cache) Wrap(q Query) *Interceptor {
	return &Interceptor{cache: c, query: q}
}

// WrapAggregate returns an aggregate interceptor for q in passthrough state.
func (c *Cache) WrapAggregate(q Query) *AggregateInterceptor {
	return &AggregateInterceptor{cache: c, query: q}
}

// ClearCache removes the entry stored under key, or every entry when key is
// empty. Callbacks receive the same error that is returned.
func (c *Cache) ClearCache(ctx context.Context, key string, callbacks ...func(error)) error {
	var err error
	if key == "" {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Delete(ctx, key)
	}
	if err != nil {
		err = errors.Wrap(err, "querycache: clear")
	}
	for _, cb := range callbacks {
		if cb != nil {
			cb(err)
		}
	}
	return err
}

// IsCached reports whether key currently holds a value. Any stored value
// counts, including a zero count or an empty list.
func (c *Cache) IsCached(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, cache.ErrMissingKey
	}
	_, found, err := c.store.Get(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "querycache: store get")
	}
	return found, nil
}

// SetCache stores value under key. The TTL defaults to cache.DefaultSetTTL.
// Empty keys and zero values are rejected; while writes are disabled the
// call succeeds without storing anything.
func (c *Cache) SetCache(ctx context.Context, key string, value any, ttl ...time.Duration) error {
	if key == "" {
		return cache.ErrMissingKey
	}
	if isNil(value) || reflect.ValueOf(value).IsZero() {
		return cache.ErrMissingValue
	}
	if c.writesDisabled() {
		c.logger.Debug().Str("key", key).Msg("cache writes disabled, skipping set")
		return nil
	}

	expiry := cache.DefaultSetTTL
	if len(ttl) > 0 {
		expiry = ttl[0]
	}

	payload, err := encodePayload(value)
	if err != nil {
		return errors.Wrap(err, "querycache: encode value")
	}
	if err := c.store.Set(ctx, key, payload, expiry); err != nil {
		return errors.Wrap(err, "querycache: store set")
	}
	return nil
}

// Remember is a read-through helper for results that do not come from a
// Query. The key is dir.Key or the derived key of d; a nil result is returned
// without being cached.
func Remember[R any](ctx context.Context, c *Cache, d cache.Descriptor, dir cache.Directive, fetch func(ctx context.Context) (R, error)) (R, error) {
	var zero R

	key := dir.Key
	if key == "" {
		key = c.codec.DeriveKey(d)
	}

	payload, err := c.resolve(ctx, key, d, dir.TTL, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil || payload == nil {
		return zero, err
	}

	var out R
	if err := unmarshalInto(payload, &out, payloadTag); err != nil {
		return zero, c.discard(ctx, key, errors.Wrapf(err, "querycache: decode %q", key))
	}
	return out, nil
}

// resolve returns the payload stored under key, filling it from fetch on a
// miss. A nil payload with a nil error means fetch produced a nil result.
func (c *Cache) resolve(ctx context.Context, key string, d cache.Descriptor, ttl time.Duration, fetch execFunc) ([]byte, error) {
	payload, found, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		c.metrics.hit(ctx, d)
		c.logger.Debug().Str("key", key).Str("model", d.Model).Str("op", string(d.Op)).Msg("query cache hit")
		return payload, nil
	}

	c.metrics.miss(ctx, d)
	c.logger.Debug().Str("key", key).Str("model", d.Model).Str("op", string(d.Op)).Msg("query cache miss")

	if c.flight == nil {
		return c.fill(ctx, key, d, ttl, fetch)
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context is done.
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		return c.fill(shared, key, d, ttl, fetch)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug().Str("key", key).Msg("joined in-flight query")
		}
		payload, _ = res.Val.([]byte)
		return payload, nil
	}
}

// discard removes an entry whose payload could not be turned back into a
// result so later reads go to the backing query. It returns cause.
func (c *Cache) discard(ctx context.Context, key string, cause error) error {
	if err := c.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to discard undecodable entry")
	}
	return cause
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, bool, error) {
	v, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Wrap(err, "querycache: store get")
	}
	if !found {
		return nil, false, nil
	}
	payload, ok := v.([]byte)
	if !ok {
		return nil, false, errors.Wrapf(cache.ErrInvalidResultType, "payload under %q is %T", key, v)
	}
	return payload, true, nil
}

// fill executes fetch once and stores its encoded result. Backing errors are
// returned as they are and never cached.
func (c *Cache) fill(ctx context.Context, key string, d cache.Descriptor, ttl time.Duration, fetch execFunc) ([]byte, error) {
	result, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if isNil(result) {
		return nil, nil
	}

	payload, err := encodePayload(result)
	if err != nil {
		return nil, errors.Wrap(err, "querycache: encode result")
	}

	if c.writesDisabled() {
		c.logger.Debug().Str("key", key).Msg("cache writes disabled, skipping store")
		return payload, nil
	}
	if err := c.store.Set(ctx, key, payload, ttl); err != nil {
		return nil, errors.Wrap(err, "querycache: store set")
	}
	c.metrics.write(ctx, d)
	return payload, nil
}
