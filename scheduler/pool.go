package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

type lifecycle int

const (
	stateIdle lifecycle = iota
	stateRunning
	stateStopping
	stateStopped
)

// Pool is a fixed set of workers fed from one unbounded FIFO queue.
//
// Work submitted before Start waits in the queue. Queued work is never
// cancelled; Stop lets the workers drain everything already accepted.
type Pool struct {
	name    string
	workers int
	opts    options

	mu    sync.Mutex
	cond  *sync.Cond
	queue []*task
	state lifecycle
	wg    sync.WaitGroup

	active    atomic.Int64
	completed atomic.Int64
}

var (
	_ Submitter           = (*Pool)(nil)
	_ component.Component = (*Pool)(nil)
)

// NewPool creates a pool of n workers. n <= 0 means runtime.NumCPU().
func NewPool(name string, n int, opts ...Option) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{
		name:    name,
		workers: n,
		opts:    buildOptions(name, opts),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// NewSingle creates a pool with exactly one worker. Work runs in
// submission order.
func NewSingle(name string, opts ...Option) *Pool {
	return NewPool(name, 1, opts...)
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateRunning:
		return fmt.Errorf("scheduler %s already started", p.name)
	case stateStopping, stateStopped:
		return errors.SchedulerStopped(p.name)
	}

	p.state = stateRunning
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.opts.log.Info("scheduler started", logger.Fields("workers", p.workers, "queued", len(p.queue)))
	return nil
}

// Stop refuses new work and waits until the queue is drained and running
// work has returned, or until ctx is done. Work left in the queue of a pool
// that was never started is dropped.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case stateStopped:
		p.mu.Unlock()
		return nil
	case stateIdle:
		dropped := p.queue
		p.queue = nil
		p.state = stateStopped
		p.mu.Unlock()
		for _, t := range dropped {
			p.opts.metrics.TaskStarted(t.ctx, p.name)
			t.handle.finish(StateDropped)
		}
		p.opts.log.Info("scheduler stopped", logger.Fields("dropped", len(dropped)))
		return nil
	}
	p.state = stateStopping
	p.cond.Broadcast()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.mu.Lock()
		p.state = stateStopped
		p.mu.Unlock()
		p.opts.log.Info("scheduler stopped", logger.Fields("completed", p.completed.Load()))
		return nil
	case <-ctx.Done():
		p.opts.log.Warn("scheduler stop timed out", logger.Fields("queued", p.Queued(), "active", p.active.Load()))
		return fmt.Errorf("stopping scheduler %s: %w", p.name, ctx.Err())
	}
}

// Health reports whether the pool accepts work.
func (p *Pool) Health(ctx context.Context) component.Health {
	p.mu.Lock()
	state, queued := p.state, len(p.queue)
	p.mu.Unlock()

	h := component.Health{Name: p.name}
	switch state {
	case stateRunning:
		h.Status = component.StatusHealthy
		h.Message = fmt.Sprintf("workers=%d queued=%d active=%d", p.workers, queued, p.active.Load())
	case stateIdle:
		h.Status = component.StatusDegraded
		h.Message = "not started"
	default:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	}
	return h
}

// Describe implements component.Describable.
func (p *Pool) Describe() component.Description {
	return component.Description{
		Type:    "scheduler",
		Details: fmt.Sprintf("pool workers=%d", p.workers),
	}
}

// Queued returns the number of units of work waiting for a worker.
func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Submit enqueues w.
func (p *Pool) Submit(ctx context.Context, w Work) (*Handle, error) {
	t := newTask(ctx, w)

	p.mu.Lock()
	if p.state == stateStopping || p.state == stateStopped {
		p.mu.Unlock()
		p.opts.metrics.TaskRejected(ctx, p.name)
		return nil, errors.Rejected(p.name)
	}
	p.queue = append(p.queue, t)
	p.cond.Signal()
	p.mu.Unlock()

	p.opts.metrics.TaskSubmitted(ctx, p.name)
	return t.handle, nil
}

// Run enqueues w. Work handed to a stopped pool is dropped with a warning.
func (p *Pool) Run(ctx context.Context, w Work) {
	if _, err := p.Submit(ctx, w); err != nil {
		p.opts.log.Warn("work dropped", logger.MergeWithError(nil, err))
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	w := Worker{Scheduler: p.name, ID: id}
	for {
		t, ok := p.next()
		if !ok {
			return
		}
		p.active.Add(1)
		p.opts.execute(p.name, t, w)
		p.active.Add(-1)
		p.completed.Add(1)
	}
}

// next blocks until work is available. It returns false once the pool is
// stopping and the queue is empty.
func (p *Pool) next() (*task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && p.state == stateRunning {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	t := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return t, true
}
