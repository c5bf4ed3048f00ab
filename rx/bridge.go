package rx

import (
	"context"
	"iter"
	"sync"
)

// Iterator pulls the values of one subscription.
type Iterator[T any] interface {
	// Next returns the next value. ok is false once the subscription has
	// completed or the iterator was closed; err carries a failure or
	// cancellation.
	Next(ctx context.Context) (v T, ok bool, err error)
	// Close cancels the subscription.
	Close() error
}

// Iter subscribes to src and buffers its signals until Next takes them. The
// buffer is unbounded; a fast producer and a slow reader grow it.
func Iter[T any](ctx context.Context, src *Source[T], opts ...SubscribeOption) Iterator[T] {
	q := &queueIter[T]{parent: ctx, ready: make(chan struct{}, 1)}
	q.tok = src.Subscribe(ctx, Funcs[T]{
		OnNext: func(_ context.Context, v T) {
			q.mu.Lock()
			q.items = append(q.items, v)
			q.mu.Unlock()
			q.notify()
		},
		OnFail: func(_ context.Context, err error) {
			q.mu.Lock()
			q.err, q.done = err, true
			q.mu.Unlock()
			q.notify()
		},
		OnComplete: func(context.Context) {
			q.mu.Lock()
			q.done = true
			q.mu.Unlock()
			q.notify()
		},
	}, opts...)
	return q
}

type queueIter[T any] struct {
	parent context.Context
	tok    *Token
	ready  chan struct{}

	mu     sync.Mutex
	items  []T
	err    error
	done   bool
	closed bool
}

func (q *queueIter[T]) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *queueIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		q.mu.Lock()
		switch {
		case q.closed:
			q.mu.Unlock()
			return zero, false, nil
		case len(q.items) > 0:
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, true, nil
		case q.done:
			err := q.err
			q.mu.Unlock()
			return zero, false, err
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-q.tok.Done():
			q.settle()
		case <-ctx.Done():
			// A done parent ends the subscription too; report its
			// outcome rather than whichever context fired first.
			if q.parent.Err() == nil {
				return zero, false, ctx.Err()
			}
			<-q.tok.Done()
			q.settle()
		}
	}
}

// settle records the token's outcome once it is done. Terminal signals land
// before Done closes, so only a cancellation leaves the queue open here.
func (q *queueIter[T]) settle() {
	q.mu.Lock()
	if !q.done && len(q.items) == 0 {
		q.err, q.done = q.tok.Err(), true
	}
	q.mu.Unlock()
}

func (q *queueIter[T]) Close() error {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
	q.tok.Cancel()
	return nil
}

// All returns a range-over-func view of a new subscription to src. Breaking
// out of the loop cancels the subscription. A failure is yielded once as the
// final pair.
func All[T any](ctx context.Context, src *Source[T], opts ...SubscribeOption) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := Iter(ctx, src, opts...)
		defer it.Close()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Collect subscribes to src and gathers every value until it terminates or
// ctx is done.
func Collect[T any](ctx context.Context, src *Source[T], opts ...SubscribeOption) ([]T, error) {
	var out []T
	for v, err := range All(ctx, src, opts...) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
