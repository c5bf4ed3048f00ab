package rx

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxkit/errors"
)

// protect calls fn and turns a panic into an OPERATOR_FAILED error.
func protect[R any](op string, fn func() (R, error)) (out R, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = errors.OperatorFailed(op, cause).WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return fn()
}

// passthrough forwards terminal signals unchanged.
type passthrough[T any] struct {
	down Emitter[T]
}

func (p passthrough[T]) Fail(ctx context.Context, err error) { p.down.Fail(ctx, err) }

func (p passthrough[T]) Complete(ctx context.Context) { p.down.Complete(ctx) }

// abort cancels the upstream and fails downstream.
func (p passthrough[T]) abort(ctx context.Context, up *guard, err error) {
	up.cancel()
	p.down.Fail(ctx, err)
}

type mapOp[I, O any] struct {
	src *Source[I]
	fn  func(context.Context, I) (O, error)
}

func (m *mapOp[I, O]) produce(ctx context.Context, e Emitter[O]) {
	link(ctx, m.src.p, func(up *guard) Consumer[I] {
		return &mapRelay[I, O]{passthrough: passthrough[O]{e}, up: up, fn: m.fn}
	})
}

type mapRelay[I, O any] struct {
	passthrough[O]
	up *guard
	fn func(context.Context, I) (O, error)
}

func (r *mapRelay[I, O]) Next(ctx context.Context, v I) {
	out, err := protect("map", func() (O, error) { return r.fn(ctx, v) })
	if err != nil {
		r.abort(ctx, r.up, err)
		return
	}
	r.down.Next(ctx, out)
}

// Map returns a Source emitting fn(v) for every upstream value. An error or
// panic in fn fails the chain; nothing is emitted after it.
func Map[I, O any](src *Source[I], fn func(ctx context.Context, v I) (O, error)) *Source[O] {
	return newSource[O]("map", &mapOp[I, O]{src: src, fn: fn})
}

type filterOp[T any] struct {
	src  *Source[T]
	pred func(context.Context, T) (bool, error)
}

func (f *filterOp[T]) produce(ctx context.Context, e Emitter[T]) {
	link(ctx, f.src.p, func(up *guard) Consumer[T] {
		return &filterRelay[T]{passthrough: passthrough[T]{e}, up: up, pred: f.pred}
	})
}

type filterRelay[T any] struct {
	passthrough[T]
	up   *guard
	pred func(context.Context, T) (bool, error)
}

func (r *filterRelay[T]) Next(ctx context.Context, v T) {
	keep, err := protect("filter", func() (bool, error) { return r.pred(ctx, v) })
	if err != nil {
		r.abort(ctx, r.up, err)
		return
	}
	if keep {
		r.down.Next(ctx, v)
	}
}

// Filter returns a Source emitting only the values for which pred is true.
func Filter[T any](src *Source[T], pred func(ctx context.Context, v T) (bool, error)) *Source[T] {
	return newSource[T]("filter", &filterOp[T]{src: src, pred: pred})
}

// Filter is the method form of Filter.
func (s *Source[T]) Filter(pred func(ctx context.Context, v T) (bool, error)) *Source[T] {
	return Filter(s, pred)
}

type tapOp[T any] struct {
	src *Source[T]
	fn  func(context.Context, T) error
}

func (t *tapOp[T]) produce(ctx context.Context, e Emitter[T]) {
	link(ctx, t.src.p, func(up *guard) Consumer[T] {
		return &tapRelay[T]{passthrough: passthrough[T]{e}, up: up, fn: t.fn}
	})
}

type tapRelay[T any] struct {
	passthrough[T]
	up *guard
	fn func(context.Context, T) error
}

func (r *tapRelay[T]) Next(ctx context.Context, v T) {
	_, err := protect("tap", func() (struct{}, error) { return struct{}{}, r.fn(ctx, v) })
	if err != nil {
		r.abort(ctx, r.up, err)
		return
	}
	r.down.Next(ctx, v)
}

// Tap calls fn for every value and forwards the value unchanged.
func Tap[T any](src *Source[T], fn func(ctx context.Context, v T) error) *Source[T] {
	return newSource[T]("tap", &tapOp[T]{src: src, fn: fn})
}

// Tap is the method form of Tap.
func (s *Source[T]) Tap(fn func(ctx context.Context, v T) error) *Source[T] {
	return Tap(s, fn)
}

var errNilInner = stderrors.New("nil inner source")

type flatMapOp[I, O any] struct {
	src *Source[I]
	fn  func(context.Context, I) (*Source[O], error)
}

func (f *flatMapOp[I, O]) produce(ctx context.Context, e Emitter[O]) {
	fctx, cancel := context.WithCancel(ctx)
	r := &flatMapRelay[I, O]{
		passthrough: passthrough[O]{e},
		ctx:         fctx,
		cancel:      cancel,
		fn:          f.fn,
	}
	// The outer source counts as one outstanding producer.
	r.pending.Store(1)
	link(fctx, f.src.p, func(up *guard) Consumer[I] {
		r.up = up
		return r
	})
}

// flatMapRelay subscribes one inner Source per upstream value. Downstream
// completes once the upstream and every inner subscription have completed.
type flatMapRelay[I, O any] struct {
	passthrough[O]
	ctx     context.Context
	cancel  context.CancelFunc
	up      *guard
	fn      func(context.Context, I) (*Source[O], error)
	pending atomic.Int64
	once    sync.Once
}

func (r *flatMapRelay[I, O]) Next(ctx context.Context, v I) {
	inner, err := protect("flatMap", func() (*Source[O], error) { return r.fn(ctx, v) })
	if err == nil && inner == nil {
		err = errors.OperatorFailed("flatMap", errNilInner)
	}
	if err != nil {
		r.Fail(ctx, err)
		return
	}

	// Inner subscriptions inherit the executor stored in r.ctx.
	r.pending.Add(1)
	inner.Subscribe(r.ctx, &innerRelay[I, O]{outer: r})
}

func (r *flatMapRelay[I, O]) Fail(ctx context.Context, err error) {
	r.up.cancel()
	r.down.Fail(ctx, err)
	r.shutdown()
}

func (r *flatMapRelay[I, O]) Complete(ctx context.Context) {
	r.release(ctx)
}

func (r *flatMapRelay[I, O]) release(ctx context.Context) {
	if r.pending.Add(-1) == 0 {
		r.down.Complete(ctx)
		r.shutdown()
	}
}

// shutdown cancels every inner subscription still running.
func (r *flatMapRelay[I, O]) shutdown() {
	r.once.Do(r.cancel)
}

type innerRelay[I, O any] struct {
	outer *flatMapRelay[I, O]
}

func (r *innerRelay[I, O]) Next(ctx context.Context, v O) { r.outer.down.Next(ctx, v) }

func (r *innerRelay[I, O]) Fail(ctx context.Context, err error) { r.outer.Fail(ctx, err) }

func (r *innerRelay[I, O]) Complete(ctx context.Context) { r.outer.release(ctx) }

// FlatMap subscribes to the Source fn returns for each upstream value and
// merges the inner values downstream. Inner subscriptions run concurrently;
// order is kept within one inner Source only. A failure anywhere fails the
// chain and cancels the rest. Completion waits for the upstream and every
// inner Source to complete.
func FlatMap[I, O any](src *Source[I], fn func(ctx context.Context, v I) (*Source[O], error)) *Source[O] {
	return newSource[O]("flatMap", &flatMapOp[I, O]{src: src, fn: fn})
}
