package querycache

import (
	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-query-cache/cache"
)

// All converts a list result into []T. It is shaped to take Exec's return
// values directly:
//
//	users, err := querycache.All[User](q.Cache(60).Exec(ctx))
func All[T any](result any, err error) ([]T, error) {
	if err != nil || result == nil {
		return nil, err
	}
	switch v := result.(type) {
	case []T:
		return v, nil
	case []any:
		out := make([]T, 0, len(v))
		for idx, item := range v {
			typed, ok := item.(T)
			if !ok {
				var zero T
				return nil, errors.Wrapf(cache.ErrInvalidResultType, "element %d is %T, want %T", idx, item, zero)
			}
			out = append(out, typed)
		}
		return out, nil
	default:
		var zero T
		return nil, errors.Wrapf(cache.ErrInvalidResultType, "result is %T, want []%T", result, zero)
	}
}

// One converts a single result into T. A nil result yields the zero value.
func One[T any](result any, err error) (T, error) {
	var zero T
	if err != nil || result == nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, errors.Wrapf(cache.ErrInvalidResultType, "result is %T, want %T", result, zero)
	}
	return typed, nil
}

// Count converts a count result into int64.
func Count(result any, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	switch v := result.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, errors.Wrapf(cache.ErrInvalidResultType, "count result is %T", result)
	}
}
