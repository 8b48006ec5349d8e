package reactive

import "context"

// Result is one emission of an observation. Err is set when the query could
// not be computed (for example a row with a corrupt composite field); the
// failure belongs to this observation only and does not affect others.
type Result[T any] struct {
	Value T
	Err   error
}

// Observe runs query once immediately, then again after every hub broadcast,
// delivering each result on the returned channel. Each observer gets its own
// delivery goroutine, so a slow consumer delays only itself. Intermediate
// states during a burst of writes may be skipped, but a recompute always
// follows the last broadcast, so the final state is always delivered.
//
// Cancelling ctx ends the observation: the subscription is released and the
// channel is closed. No further emissions follow cancellation.
func Observe[T any](ctx context.Context, hub *Hub, query func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T])
	id, dirty := hub.Subscribe()

	go func() {
		defer close(out)
		defer hub.Unsubscribe(id)

		emit := func() bool {
			value, err := query()
			select {
			case out <- Result[T]{Value: value, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}
