package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
)

// Work is one unit of work. The context carries the Worker executing it.
type Work func(ctx context.Context)

// Scheduler runs units of work somewhere other than the caller.
type Scheduler interface {
	// Run hands w to the scheduler and returns without waiting for it.
	Run(ctx context.Context, w Work)
	// Name identifies the scheduler in worker identities, logs and metrics.
	Name() string
}

// Submitter is a Scheduler that can report on the work it accepted.
type Submitter interface {
	Scheduler
	// Submit enqueues w and returns a Handle tracking it. A stopped
	// scheduler returns a REJECTED error and never runs w.
	Submit(ctx context.Context, w Work) (*Handle, error)
}

// Worker identifies the execution resource running a unit of work.
type Worker struct {
	Scheduler string
	ID        int
}

func (w Worker) String() string {
	return fmt.Sprintf("%s-%d", w.Scheduler, w.ID)
}

type workerKey struct{}

// WithWorker returns a copy of ctx carrying w.
func WithWorker(ctx context.Context, w Worker) context.Context {
	return context.WithValue(ctx, workerKey{}, w)
}

// WorkerFrom returns the Worker running the current unit of work.
func WorkerFrom(ctx context.Context) (Worker, bool) {
	w, ok := ctx.Value(workerKey{}).(Worker)
	return w, ok
}

// State is the lifecycle state of a submitted unit of work.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateDone
	StateDropped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Handle tracks one submitted unit of work.
type Handle struct {
	id       string
	state    atomic.Int32
	panicked atomic.Bool
	done     chan struct{}
}

func newHandle() *Handle {
	return &Handle{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the unique id of the unit of work.
func (h *Handle) ID() string { return h.id }

// Done is closed once the work has finished or was dropped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// State returns the current state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Panicked reports whether the work ended in a recovered panic.
func (h *Handle) Panicked() bool { return h.panicked.Load() }

// Wait blocks until the work finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) finish(s State) {
	h.state.Store(int32(s))
	close(h.done)
}

type task struct {
	ctx    context.Context
	work   Work
	handle *Handle
}

func newTask(ctx context.Context, w Work) *task {
	return &task{ctx: ctx, work: w, handle: newHandle()}
}

type options struct {
	metrics *observability.PipelineMetrics
	log     *logger.Logger
}

// Option configures a scheduler.
type Option func(*options)

// WithMetrics records task counts, queue depth and durations into m.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger used for lifecycle events and recovered panics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{metrics: observability.Pipeline()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("scheduler")
	}
	o.log = o.log.WithFields(logger.Fields(logger.FieldScheduler, name))
	return o
}

// execute runs t as worker w. A panic is recovered, logged and counted; it
// never reaches the worker loop.
func (o *options) execute(name string, t *task, w Worker) {
	t.handle.state.Store(int32(StateRunning))
	o.metrics.TaskStarted(t.ctx, name)
	start := time.Now()
	status := observability.TaskOK

	defer func() {
		if r := recover(); r != nil {
			status = observability.TaskPanicked
			t.handle.panicked.Store(true)
			o.log.Error("work panicked", logger.Fields(
				logger.FieldWorker, w.String(),
				logger.FieldTask, t.handle.id,
				logger.FieldPanic, fmt.Sprint(r),
			))
		}
		o.metrics.TaskCompleted(t.ctx, name, status, time.Since(start))
		t.handle.finish(StateDone)
	}()

	t.work(WithWorker(t.ctx, w))
}
