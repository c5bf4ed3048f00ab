package rx

import "context"

// Just returns a Source emitting values in order, then completing.
func Just[T any](values ...T) *Source[T] {
	return FromSlice(values).Named("just")
}

// FromSlice returns a Source emitting the elements of values in order, then
// completing. Emission stops early once the subscription is cancelled.
func FromSlice[T any](values []T) *Source[T] {
	return newSource[T]("fromSlice", Producer[T](func(ctx context.Context, e Emitter[T]) {
		for _, v := range values {
			if ctx.Err() != nil {
				return
			}
			e.Next(ctx, v)
		}
		e.Complete(ctx)
	}))
}

// Empty returns a Source that completes without emitting.
func Empty[T any]() *Source[T] {
	return newSource[T]("empty", Producer[T](func(ctx context.Context, e Emitter[T]) {
		e.Complete(ctx)
	}))
}

// Error returns a Source that fails with err without emitting.
func Error[T any](err error) *Source[T] {
	return newSource[T]("error", Producer[T](func(ctx context.Context, e Emitter[T]) {
		e.Fail(ctx, err)
	}))
}

// Range returns a Source emitting count consecutive integers from start.
func Range(start, count int) *Source[int] {
	return newSource[int]("range", Producer[int](func(ctx context.Context, e Emitter[int]) {
		for i := start; i < start+count; i++ {
			if ctx.Err() != nil {
				return
			}
			e.Next(ctx, i)
		}
		e.Complete(ctx)
	}))
}
