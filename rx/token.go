package rx

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/rxkit/scheduler"
)

// Token is the handle returned by Subscribe.
type Token struct {
	id     string
	g      *guard
	done   chan struct{}
	err    error
	handle atomic.Pointer[scheduler.Handle]
}

func newToken() *Token {
	return &Token{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the subscription id.
func (t *Token) ID() string { return t.id }

// Cancel stops delivery to the Consumer. No signal starts reaching the
// Consumer after Cancel returns; a delivery already in progress finishes.
// The subscription context is cancelled so cooperative producers can stop.
// Cancel is idempotent and has no effect on a terminated subscription.
func (t *Token) Cancel() { t.g.cancel() }

// IsCancelled reports whether the subscription can no longer deliver
// signals, either because it was cancelled or because it terminated.
func (t *Token) IsCancelled() bool { return t.g.terminated() }

// Done is closed once the subscription is over.
func (t *Token) Done() <-chan struct{} { return t.done }

// Err returns nil while the subscription runs and after it completed, the
// failure after it failed, and a CANCELLED error after it was cancelled.
func (t *Token) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Producer returns the handle of the task running the producer, or nil when
// the executor refused it.
func (t *Token) Producer() *scheduler.Handle { return t.handle.Load() }

func (t *Token) finish(err error) {
	t.err = err
	close(t.done)
}
