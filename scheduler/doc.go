// Package scheduler provides the execution contexts that rx pipelines run on.
//
// A Scheduler accepts units of work and runs them on its own workers without
// blocking the caller. Every unit of work receives a context carrying the
// Worker that runs it; WorkerFrom reads it back, which is how pipelines and
// tests observe where a signal was delivered.
//
// Three implementations are provided:
//
//   - Pool: a fixed number of workers draining an unbounded FIFO queue. The
//     baseline computation context, sized to runtime.NumCPU() by default.
//   - NewSingle: a Pool with one worker. Work runs in submission order.
//   - IO: a goroutine per unit of work, capped by a resilience.Bulkhead.
//
// Pool and IO implement component.Component so binaries can start and
// drain them through a component.Registry. Panics in work are recovered and
// logged; the worker keeps running.
package scheduler
