// Package resilience provides concurrency limiting for schedulers.
//
// A Bulkhead hands out a fixed number of slots. scheduler.IO uses one with
// WaitForever so that tasks beyond the cap park in their own goroutine
// instead of blocking the caller:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//	    Name:          "io",
//	    MaxConcurrent: 64,
//	    MaxWait:       resilience.WaitForever,
//	})
//	err := bh.Execute(ctx, func(ctx context.Context) error {
//	    return readFile(ctx)
//	})
package resilience
