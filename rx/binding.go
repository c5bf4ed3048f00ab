package rx

import (
	"context"

	"github.com/kbukum/rxkit/scheduler"
)

// dispatch hands w to s and reports whether s accepted it. When s can
// report refusal, a refused unit of work fails e instead of disappearing.
func dispatch[T any](ctx context.Context, s scheduler.Scheduler, e Emitter[T], w scheduler.Work) bool {
	sub, ok := s.(scheduler.Submitter)
	if !ok {
		s.Run(ctx, w)
		return true
	}
	if _, err := sub.Submit(ctx, w); err != nil {
		e.Fail(ctx, err)
		return false
	}
	return true
}

type subscribeOnOp[T any] struct {
	src *Source[T]
	s   scheduler.Scheduler
}

func (o *subscribeOnOp[T]) produce(ctx context.Context, e Emitter[T]) {
	dispatch(ctx, o.s, e, func(wctx context.Context) {
		invoke(wctx, o.src.p, e)
	})
}

// SubscribeOn returns a Source whose upstream production runs as one unit of
// work on s. Every signal the upstream issues synchronously is issued from
// s's worker.
func SubscribeOn[T any](src *Source[T], s scheduler.Scheduler) *Source[T] {
	return newSource[T]("subscribeOn", &subscribeOnOp[T]{src: src, s: s})
}

// SubscribeOn is the method form of SubscribeOn.
func (s *Source[T]) SubscribeOn(sch scheduler.Scheduler) *Source[T] {
	return SubscribeOn(s, sch)
}

type observeOnOp[T any] struct {
	src *Source[T]
	s   scheduler.Scheduler
}

func (o *observeOnOp[T]) produce(ctx context.Context, e Emitter[T]) {
	link(ctx, o.src.p, func(up *guard) Consumer[T] {
		return &observeOnRelay[T]{down: e, s: o.s, up: up}
	})
}

// observeOnRelay submits every signal to s as its own unit of work. The
// upstream context is cancelled as soon as it terminates, so deliveries still
// queued on s run detached from it. A refused signal fails downstream and
// cancels upstream.
type observeOnRelay[T any] struct {
	down Emitter[T]
	s    scheduler.Scheduler
	up   *guard
}

func (r *observeOnRelay[T]) forward(ctx context.Context, w scheduler.Work) {
	if !dispatch(context.WithoutCancel(ctx), r.s, r.down, w) {
		r.up.cancel()
	}
}

func (r *observeOnRelay[T]) Next(ctx context.Context, v T) {
	r.forward(ctx, func(wctx context.Context) { r.down.Next(wctx, v) })
}

func (r *observeOnRelay[T]) Fail(ctx context.Context, err error) {
	r.forward(ctx, func(wctx context.Context) { r.down.Fail(wctx, err) })
}

func (r *observeOnRelay[T]) Complete(ctx context.Context) {
	r.forward(ctx, func(wctx context.Context) { r.down.Complete(wctx) })
}

// ObserveOn returns a Source delivering every signal on s. Upstream keeps
// producing where it runs. Signals stay in order only when s runs work in
// submission order, as a single-worker pool does.
func ObserveOn[T any](src *Source[T], s scheduler.Scheduler) *Source[T] {
	return newSource[T]("observeOn", &observeOnOp[T]{src: src, s: s})
}

// ObserveOn is the method form of ObserveOn.
func (s *Source[T]) ObserveOn(sch scheduler.Scheduler) *Source[T] {
	return ObserveOn(s, sch)
}
