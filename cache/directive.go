package cache

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Directive is the per-query caching configuration attached before execution.
type Directive struct {
	// TTL is handed to the store unchanged: zero keeps the entry indefinitely,
	// negative values use the store default.
	TTL time.Duration
	// Key replaces the derived key when non-empty.
	Key string
	// ServerSideProjection removes the projection from the backing query and
	// filters fields in-process after every read, so one cached full payload
	// serves every projection of the same query.
	ServerSideProjection bool
}

// DefaultDirective returns the directive used when a query opts in with no arguments.
func DefaultDirective() Directive {
	return Directive{TTL: DefaultQueryTTL}
}

// NewDirective normalizes opt-in arguments into a Directive.
//
// The positional form is (ttl, key, serverSideProjection). TTL accepts integer
// seconds or a time.Duration. Two shorthands are recognised in first position:
// a string is the override key and a bool is the projection mode, both with the
// default TTL.
func NewDirective(args ...any) (Directive, error) {
	d := DefaultDirective()
	if len(args) == 0 {
		return d, nil
	}
	if len(args) > 3 {
		return Directive{}, errors.Wrapf(ErrInvalidDirective, "expected at most 3 arguments, got %d", len(args))
	}

	switch first := args[0].(type) {
	case string:
		if len(args) > 1 {
			return Directive{}, errors.Wrap(ErrInvalidDirective, "key shorthand takes a single argument")
		}
		d.Key = first
		return d, nil
	case bool:
		if len(args) > 1 {
			return Directive{}, errors.Wrap(ErrInvalidDirective, "projection shorthand takes a single argument")
		}
		d.ServerSideProjection = first
		return d, nil
	}

	ttl, err := toTTL(args[0])
	if err != nil {
		return Directive{}, err
	}
	d.TTL = ttl

	if len(args) > 1 {
		key, ok := args[1].(string)
		if !ok {
			return Directive{}, errors.Wrapf(ErrInvalidDirective, "key must be a string, got %T", args[1])
		}
		d.Key = key
	}
	if len(args) > 2 {
		flag, ok := args[2].(bool)
		if !ok {
			return Directive{}, errors.Wrapf(ErrInvalidDirective, "server side projection must be a bool, got %T", args[2])
		}
		d.ServerSideProjection = flag
	}
	return d, nil
}

func toTTL(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case int:
		return time.Duration(t) * time.Second, nil
	case int32:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case uint:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	default:
		return 0, errors.Wrapf(ErrInvalidDirective, "ttl must be seconds or a time.Duration, got %T", v)
	}
}
