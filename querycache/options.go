package querycache

import (
	"github.com/goliatone/go-query-cache/cache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	logger         zerolog.Logger
	meterProvider  metric.MeterProvider
	codec          cache.KeyCodec
	singleFlight   bool
	writesDisabled func() bool
}

func defaultOptions() options {
	return options{
		logger:         zerolog.Nop(),
		codec:          cache.NewDefaultKeyCodec(),
		writesDisabled: cache.WritesDisabled,
	}
}

// WithLogger sets the logger used for hit, miss and store events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMeterProvider sets the provider for the hit, miss and write counters.
// The global provider is used when unset.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithKeyCodec replaces the default key codec.
func WithKeyCodec(codec cache.KeyCodec) Option {
	return func(o *options) {
		if codec != nil {
			o.codec = codec
		}
	}
}

// WithSingleFlight collapses concurrent misses on the same key into a single
// backing execution.
func WithSingleFlight() Option {
	return func(o *options) { o.singleFlight = true }
}

// WithWriteToggle replaces the check deciding whether cache writes are
// skipped. It defaults to cache.WritesDisabled.
func WithWriteToggle(disabled func() bool) Option {
	return func(o *options) {
		if disabled != nil {
			o.writesDisabled = disabled
		}
	}
}
