package querycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/goliatone/go-query-cache/querycache"

// metrics counts cache traffic per model and operation.
type metrics struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
	writes metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(instrumentationName)

	hits, err := meter.Int64Counter(
		"querycache.hits",
		metric.WithDescription("Number of query results served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"querycache.misses",
		metric.WithDescription("Number of cached queries executed against the backing store"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	writes, err := meter.Int64Counter(
		"querycache.writes",
		metric.WithDescription("Number of payloads written to the cache"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{hits: hits, misses: misses, writes: writes}, nil
}

func attrs(d cache.Descriptor) metric.AddOption {
	return metric.WithAttributes(
		attribute.String("model", d.Model),
		attribute.String("op", string(d.Op)),
	)
}

func (m *metrics) hit(ctx context.Context, d cache.Descriptor)   { m.hits.Add(ctx, 1, attrs(d)) }
func (m *metrics) miss(ctx context.Context, d cache.Descriptor)  { m.misses.Add(ctx, 1, attrs(d)) }
func (m *metrics) write(ctx context.Context, d cache.Descriptor) { m.writes.Add(ctx, 1, attrs(d)) }
