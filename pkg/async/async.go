package async

import (
	"context"
	"fmt"
	"time"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Result is a settled future: the value and error it completed with.
type Result[U any] struct {
	Value U
	Err   error
}

// Await blocks until the computation completes.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits at most timeout. On expiry it returns ErrTimeout;
// the computation keeps running and its result is still observable via Await.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero U
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn(ctx, param) in its own goroutine and returns a Future.
// A pre-cancelled context completes the future with ctx.Err() without calling fn.
// A panic inside fn completes the future with an error wrapping ErrPanic.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero U
				f.result = zero
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for the futures in order and stops at the first error,
// returning the results collected so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// Settle waits for every future to complete and returns all outcomes in the
// order the futures were given. Unlike WaitAll it never stops early: a
// failing future does not hide the results of the others.
func Settle[U any](futures ...*Future[U]) []Result[U] {
	results := make([]Result[U], len(futures))
	for i, future := range futures {
		v, err := future.Await()
		results[i] = Result[U]{Value: v, Err: err}
	}
	return results
}

// Map starts fn for every item concurrently and settles the results in
// input order.
func Map[T any, U any](ctx context.Context, items []T, fn func(context.Context, T) (U, error)) []Result[U] {
	futures := make([]*Future[U], len(items))
	for i, item := range items {
		futures[i] = Async(ctx, item, fn)
	}
	return Settle(futures...)
}
