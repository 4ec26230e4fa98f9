// Package async provides generic futures for running work concurrently and
// collecting the outcome of every branch.
//
// Async starts a function in its own goroutine and returns a *Future. Await
// blocks for the result. Settle waits for a group of futures and returns every
// value and error in order, so that one failing branch cannot hide the others.
// Map is the common fan-out shape: one future per input item.
//
//	results := async.Map(ctx, devices, func(ctx context.Context, d Device) (string, error) {
//	    return deliver(ctx, d)
//	})
//	for i, r := range results {
//	    if r.Err != nil {
//	        log.Warn("delivery failed", "device", devices[i].ID, "error", r.Err)
//	    }
//	}
//
// A panic inside the function is recovered and reported as ErrPanic, so a
// fan-out always produces one result per branch.
package async
