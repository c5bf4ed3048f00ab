package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/resilience"
)

// DefaultIOMaxConcurrent caps an IO scheduler built with a non-positive limit.
const DefaultIOMaxConcurrent = 64

// IO runs every unit of work on its own goroutine. At most MaxConcurrent
// of them execute at once; the rest park in their goroutine until a slot is
// free, so Run never blocks the caller.
//
// IO accepts work as soon as it is created. Start only marks it as managed.
type IO struct {
	name     string
	opts     options
	bulkhead *resilience.Bulkhead

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup

	nextID  atomic.Int64
	pending atomic.Int64
}

var (
	_ Submitter           = (*IO)(nil)
	_ component.Component = (*IO)(nil)
)

// NewIO creates an IO scheduler running at most maxConcurrent units of work
// at once.
func NewIO(name string, maxConcurrent int, opts ...Option) *IO {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultIOMaxConcurrent
	}
	return &IO{
		name: name,
		opts: buildOptions(name, opts),
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          name,
			MaxConcurrent: maxConcurrent,
			MaxWait:       resilience.WaitForever,
		}),
	}
}

// Name returns the scheduler name.
func (s *IO) Name() string { return s.name }

// MaxConcurrent returns the concurrency cap.
func (s *IO) MaxConcurrent() int { return s.bulkhead.MaxConcurrent() }

// Start implements component.Component.
func (s *IO) Start(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return errors.SchedulerStopped(s.name)
	}
	s.opts.log.Info("scheduler started", logger.Fields("max_concurrent", s.bulkhead.MaxConcurrent()))
	return nil
}

// Stop refuses new work and waits for accepted work to finish or ctx to be
// done.
func (s *IO) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.opts.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.opts.log.Warn("scheduler stop timed out", logger.Fields("pending", s.pending.Load(), "active", s.bulkhead.InUse()))
		return fmt.Errorf("stopping scheduler %s: %w", s.name, ctx.Err())
	}
}

// Health reports whether the scheduler accepts work.
func (s *IO) Health(ctx context.Context) component.Health {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()

	if stopped {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "stopped"}
	}
	h := component.Health{
		Name:    s.name,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("active=%d/%d waiting=%d", s.bulkhead.InUse(), s.bulkhead.MaxConcurrent(), s.pending.Load()),
	}
	if s.bulkhead.Available() == 0 {
		h.Status = component.StatusDegraded
	}
	return h
}

// Describe implements component.Describable.
func (s *IO) Describe() component.Description {
	return component.Description{
		Type:    "scheduler",
		Details: fmt.Sprintf("io max_concurrent=%d", s.bulkhead.MaxConcurrent()),
	}
}

// Submit starts a goroutine for w.
func (s *IO) Submit(ctx context.Context, w Work) (*Handle, error) {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		s.opts.metrics.TaskRejected(ctx, s.name)
		return nil, errors.Rejected(s.name)
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	t := newTask(ctx, w)
	id := int(s.nextID.Add(1))
	s.pending.Add(1)
	s.opts.metrics.TaskSubmitted(ctx, s.name)

	go func() {
		defer s.wg.Done()
		// Accepted work always runs, so waiting for a slot ignores ctx.
		release, _ := s.bulkhead.Acquire(context.WithoutCancel(t.ctx))
		defer release()
		s.pending.Add(-1)
		s.opts.execute(s.name, t, Worker{Scheduler: s.name, ID: id})
	}()
	return t.handle, nil
}

// Run starts a goroutine for w. Work handed to a stopped scheduler is
// dropped with a warning.
func (s *IO) Run(ctx context.Context, w Work) {
	if _, err := s.Submit(ctx, w); err != nil {
		s.opts.log.Warn("work dropped", logger.MergeWithError(nil, err))
	}
}
