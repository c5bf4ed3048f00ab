package rx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/rxkit/scheduler"
)

const testTimeout = 2 * time.Second

// recorder is a Consumer that keeps every signal it receives.
type recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completes int
	workers   []scheduler.Worker
	atFinal   int
	finished  chan struct{}
	once      sync.Once
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{finished: make(chan struct{})}
}

func (r *recorder[T]) track(ctx context.Context) {
	if w, ok := scheduler.WorkerFrom(ctx); ok {
		r.workers = append(r.workers, w)
	}
}

func (r *recorder[T]) Next(ctx context.Context, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	r.track(ctx)
}

func (r *recorder[T]) Fail(ctx context.Context, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.atFinal = len(r.values)
	r.track(ctx)
	r.mu.Unlock()
	r.once.Do(func() { close(r.finished) })
}

func (r *recorder[T]) Complete(ctx context.Context) {
	r.mu.Lock()
	r.completes++
	r.atFinal = len(r.values)
	r.track(ctx)
	r.mu.Unlock()
	r.once.Do(func() { close(r.finished) })
}

// wait blocks until the first terminal signal.
func (r *recorder[T]) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.finished:
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a terminal signal")
	}
}

func (r *recorder[T]) snapshot() (values []T, errs []error, completes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...), append([]error(nil), r.errs...), r.completes
}

func (r *recorder[T]) workerSnapshot() []scheduler.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scheduler.Worker(nil), r.workers...)
}

func waitToken(t *testing.T, tok *Token) {
	t.Helper()
	select {
	case <-tok.Done():
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the subscription to end")
	}
}

func waitProducer(t *testing.T, tok *Token) {
	t.Helper()
	h := tok.Producer()
	if h == nil {
		t.Fatal("expected a producer handle")
	}
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("producer did not finish: %v", err)
	}
}

func double(_ context.Context, x int) (int, error) { return x * 2, nil }

func greaterThan(n int) func(context.Context, int) (bool, error) {
	return func(_ context.Context, x int) (bool, error) { return x > n, nil }
}
