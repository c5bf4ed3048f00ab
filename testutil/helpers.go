package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/scheduler"
)

// StopTimeout bounds how long cleanup waits for a component to stop.
const StopTimeout = 5 * time.Second

// Start starts c and stops it when the test ends.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    pool := scheduler.NewPool("work", 2)
//	    testutil.Start(t, pool)
//	}
func Start(t testing.TB, c component.Component) {
	t.Helper()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), StopTimeout)
		defer cancel()
		if err := c.Stop(ctx); err != nil {
			t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Pool returns a started pool of n workers that logs nothing.
func Pool(t testing.TB, name string, n int) *scheduler.Pool {
	t.Helper()
	p := scheduler.NewPool(name, n, scheduler.WithLogger(logger.Nop()))
	Start(t, p)
	return p
}

// Single returns a started single-worker pool that logs nothing.
func Single(t testing.TB, name string) *scheduler.Pool {
	t.Helper()
	p := scheduler.NewSingle(name, scheduler.WithLogger(logger.Nop()))
	Start(t, p)
	return p
}

// IO returns a started IO scheduler capped at max concurrent tasks that logs
// nothing.
func IO(t testing.TB, name string, max int) *scheduler.IO {
	t.Helper()
	s := scheduler.NewIO(name, max, scheduler.WithLogger(logger.Nop()))
	Start(t, s)
	return s
}
