package rx

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/observability"
)

// guard is the termination state of one subscription. done flips exactly
// once; mu serializes deliveries so that values and the terminal signal never
// reach a Consumer concurrently.
type guard struct {
	done  atomic.Bool
	mu    sync.Mutex
	ctx   context.Context
	stop  context.CancelFunc
	onEnd func(outcome string, err error)
}

// newGuard derives the subscription context from parent. Cancelling parent
// cancels the subscription.
func newGuard(parent context.Context, onEnd func(outcome string, err error)) (context.Context, *guard) {
	ctx, stop := context.WithCancel(parent)
	g := &guard{ctx: ctx, stop: stop, onEnd: onEnd}
	context.AfterFunc(ctx, g.cancel)
	return ctx, g
}

func (g *guard) terminated() bool { return g.done.Load() }

// live reports whether signals may still be delivered. A cancelled context
// ends the subscription here even if its AfterFunc has not run yet.
func (g *guard) live() bool {
	if g.done.Load() {
		return false
	}
	if g.ctx.Err() != nil {
		g.cancel()
		return false
	}
	return true
}

func (g *guard) claim() bool { return g.done.CompareAndSwap(false, true) }

func (g *guard) end(outcome string, err error) {
	g.stop()
	if g.onEnd != nil {
		g.onEnd(outcome, err)
	}
}

// cancel flips the guard without waiting for a delivery in progress.
func (g *guard) cancel() {
	if g.claim() {
		g.end(observability.OutcomeCancelled, errors.Cancelled())
	}
}

// emitter is the guarded Emitter handed to producers.
type emitter[T any] struct {
	g *guard
	c Consumer[T]
}

func newEmitter[T any](g *guard, c Consumer[T]) *emitter[T] {
	return &emitter[T]{g: g, c: c}
}

func (e *emitter[T]) Next(ctx context.Context, v T) {
	if !e.g.live() {
		return
	}
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	if !e.g.live() {
		return
	}
	e.c.Next(ctx, v)
}

func (e *emitter[T]) Fail(ctx context.Context, err error) {
	if !e.g.live() || !e.g.claim() {
		return
	}
	e.g.mu.Lock()
	defer e.g.end(observability.OutcomeFailed, err)
	defer e.g.mu.Unlock()
	e.c.Fail(ctx, err)
}

func (e *emitter[T]) Complete(ctx context.Context) {
	if !e.g.live() || !e.g.claim() {
		return
	}
	e.g.mu.Lock()
	defer e.g.end(observability.OutcomeCompleted, nil)
	defer e.g.mu.Unlock()
	e.c.Complete(ctx)
}
