package cache

import "github.com/cockroachdb/errors"

var (
	// ErrMissingKey is returned when an operation needs a non-empty cache key.
	ErrMissingKey = errors.New("cache: must provide a key")

	// ErrMissingValue is returned when an ambient write is given an empty value.
	ErrMissingValue = errors.New("cache: must provide a value")

	// ErrInvalidDirective is returned when cache opt-in arguments cannot be normalized.
	ErrInvalidDirective = errors.New("cache: invalid cache directive")

	// ErrInvalidResultType is returned when a cached or live result does not have the requested type.
	ErrInvalidResultType = errors.New("cache: unexpected result type")
)
