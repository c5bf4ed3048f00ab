package rx

import (
	"context"
	"fmt"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

// Emitter is the push side handed to a producer. Calls after the first
// terminal signal, or after the subscription was cancelled, are dropped.
type Emitter[T any] interface {
	Next(ctx context.Context, v T)
	Fail(ctx context.Context, err error)
	Complete(ctx context.Context)
}

// Consumer reacts to the signals of one subscription: zero or more Next,
// then at most one of Fail or Complete. Calls never overlap.
type Consumer[T any] interface {
	Next(ctx context.Context, v T)
	Fail(ctx context.Context, err error)
	Complete(ctx context.Context)
}

// Funcs adapts plain functions to a Consumer. Nil fields ignore the signal.
type Funcs[T any] struct {
	OnNext     func(ctx context.Context, v T)
	OnFail     func(ctx context.Context, err error)
	OnComplete func(ctx context.Context)
}

func (f Funcs[T]) Next(ctx context.Context, v T) {
	if f.OnNext != nil {
		f.OnNext(ctx, v)
	}
}

func (f Funcs[T]) Fail(ctx context.Context, err error) {
	if f.OnFail != nil {
		f.OnFail(ctx, err)
	}
}

func (f Funcs[T]) Complete(ctx context.Context) {
	if f.OnComplete != nil {
		f.OnComplete(ctx)
	}
}

// producer is what a Source runs once per subscription. Operators implement
// it with a struct holding their upstream Source.
type producer[T any] interface {
	produce(ctx context.Context, e Emitter[T])
}

// Producer describes how a Source generates values. It is invoked exactly
// once per subscription and should call Next any number of times followed by
// exactly one Fail or Complete. ctx is cancelled when the subscription ends.
type Producer[T any] func(ctx context.Context, e Emitter[T])

func (p Producer[T]) produce(ctx context.Context, e Emitter[T]) { p(ctx, e) }

// Source is an immutable description of a computation producing values of
// type T. Nothing runs until Subscribe, and every subscription is an
// independent execution.
type Source[T any] struct {
	p    producer[T]
	name string
}

// Create returns a Source running p for each subscription.
func Create[T any](p Producer[T]) *Source[T] {
	return &Source[T]{p: p, name: "create"}
}

func newSource[T any](name string, p producer[T]) *Source[T] {
	return &Source[T]{p: p, name: name}
}

// Name returns the label used for this Source in logs, metrics and spans.
func (s *Source[T]) Name() string { return s.name }

// Named returns a copy of the Source with a different label.
func (s *Source[T]) Named(name string) *Source[T] {
	return &Source[T]{p: s.p, name: name}
}

// invoke runs p on the calling goroutine. A panic becomes a PRODUCER_PANIC
// failure on e.
func invoke[T any](ctx context.Context, p producer[T], e Emitter[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithComponent("rx").WithContext(ctx).Error("producer panicked", logger.Fields(logger.FieldPanic, fmt.Sprint(r)))
			e.Fail(ctx, errors.ProducerPanic(r))
		}
	}()
	p.produce(ctx, e)
}

// link runs p inline against a fresh guard wrapped around c and returns that
// guard so the relay can cancel its upstream.
func link[T any](ctx context.Context, p producer[T], c func(up *guard) Consumer[T]) {
	uctx, up := newGuard(ctx, nil)
	invoke(uctx, p, newEmitter(up, c(up)))
}
