package querycache

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownModel is returned when a result must be hydrated for a model
	// that is not registered.
	ErrUnknownModel = errors.New("querycache: unknown model")

	// ErrIncompatibleORM is returned by setup when the supplied handle cannot
	// hydrate entities.
	ErrIncompatibleORM = errors.New("querycache: handle does not provide model hydration")

	// ErrNilStore is returned by New when no store is supplied.
	ErrNilStore = errors.New("querycache: store is required")
)
