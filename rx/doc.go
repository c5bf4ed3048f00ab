// Package rx is a push-based asynchronous pipeline core.
//
// A Source describes a computation that pushes values to a Consumer. It is
// immutable: every Subscribe starts an independent execution of its producer
// against a guarded Emitter. The guard lets at most one terminal signal
// (Fail or Complete) through, serializes deliveries, and drops everything
// after the terminal signal or after the Token is cancelled.
//
// Operators build new Sources around an upstream one:
//
//	src := rx.Map(rx.Just(10, 20, 30), func(_ context.Context, x int) (int, error) {
//	    return x * 2, nil
//	}).
//	    Filter(func(_ context.Context, x int) (bool, error) { return x > 20, nil }).
//	    SubscribeOn(scheduler.IOBound()).
//	    ObserveOn(scheduler.SingleThread())
//
//	tok := src.Subscribe(ctx, rx.Funcs[int]{
//	    OnNext:     func(ctx context.Context, v int) { fmt.Println(v) },
//	    OnComplete: func(context.Context) { fmt.Println("Completed") },
//	})
//	<-tok.Done()
//
// Producers run as tasks on a managed scheduler.Pool (see DefaultExecutor).
// Map, Filter and Tap relay synchronously on whatever goroutine delivers the
// upstream signal. SubscribeOn moves the upstream production onto another
// scheduler; ObserveOn moves each delivery. The context handed to producers
// and consumers carries the scheduler.Worker running them.
//
// Errors returned by operator functions are forwarded unchanged. Panics in
// producers and operator functions become PRODUCER_PANIC and OPERATOR_FAILED
// failures respectively.
//
// Iter, All and Collect bridge a Source to pull-style iteration.
package rx
