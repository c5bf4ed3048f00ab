package scheduler

import (
	"context"
	stderrors "errors"
	"sync"
)

// Names of the process-wide schedulers.
const (
	ComputationName = "computation"
	SingleName      = "single"
	IOName          = "io"
)

var (
	defaultsMu  sync.Mutex
	computation *Pool
	single      *Pool
	ioBound     *IO
)

// Computation returns the process-wide CPU-sized pool, starting it on
// first use.
func Computation() *Pool {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if computation == nil {
		computation = NewPool(ComputationName, 0)
		_ = computation.Start(context.Background())
	}
	return computation
}

// SingleThread returns the process-wide single-worker scheduler.
func SingleThread() *Pool {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if single == nil {
		single = NewSingle(SingleName)
		_ = single.Start(context.Background())
	}
	return single
}

// IOBound returns the process-wide IO scheduler.
func IOBound() *IO {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if ioBound == nil {
		ioBound = NewIO(IOName, DefaultIOMaxConcurrent)
	}
	return ioBound
}

// ShutdownDefaults stops every process-wide scheduler created so far. The
// next accessor call creates a fresh one.
func ShutdownDefaults(ctx context.Context) error {
	defaultsMu.Lock()
	c, s, i := computation, single, ioBound
	computation, single, ioBound = nil, nil, nil
	defaultsMu.Unlock()

	var errs []error
	if c != nil {
		errs = append(errs, c.Stop(ctx))
	}
	if s != nil {
		errs = append(errs, s.Stop(ctx))
	}
	if i != nil {
		errs = append(errs, i.Stop(ctx))
	}
	return stderrors.Join(errs...)
}
