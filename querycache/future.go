package querycache

import "context"

// Callback receives the outcome of an execution. It is the trailing callback
// convention layered over Exec and Go.
type Callback func(result any, err error)

// Outcome is the value delivered by Go.
type Outcome struct {
	Result any
	Err    error
}

type execFunc func(ctx context.Context) (any, error)

func runWithCallbacks(ctx context.Context, fn execFunc, callbacks []Callback) (any, error) {
	result, err := fn(ctx)
	for _, cb := range callbacks {
		if cb != nil {
			cb(result, err)
		}
	}
	return result, err
}

func runAsync(ctx context.Context, fn execFunc, callbacks []Callback) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		result, err := runWithCallbacks(ctx, fn, callbacks)
		out <- Outcome{Result: result, Err: err}
	}()
	return out
}
