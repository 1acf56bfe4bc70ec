// Package asyncutil bridges the synchronous pipeline calls and callers that
// want to await them without blocking, by submitting the call to a worker
// pool when one is available.
package asyncutil

import (
	"context"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"
)

// Result carries the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Run executes fn on the worker pool, or on a plain goroutine when pool is
// nil, and delivers the outcome on the returned channel. The channel is
// buffered so the worker never blocks on a departed receiver.
func Run[T any](ctx context.Context, pool workerpool.WorkerPool, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	work := func() {
		value, err := fn(ctx)
		ch <- Result[T]{Value: value, Err: err}
	}

	if pool != nil {
		if err := pool.Submit(ctx, work); err != nil {
			util.Log(ctx).WithError(err).Error("worker pool submit failed, running inline")
			go work()
		}
	} else {
		go work()
	}
	return ch
}
