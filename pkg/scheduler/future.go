package scheduler

import (
	"context"
	"sync"
)

// Future is the single result of an asynchronous computation on a Loop.
type Future[T any] struct {
	loop *Loop

	mu        sync.Mutex
	resolved  bool
	val       T
	err       error
	callbacks []func(T, error)
	done      chan struct{}
}

func NewFuture[T any](loop *Loop) *Future[T] {
	return &Future[T]{loop: loop, done: make(chan struct{})}
}

// Failed returns a Future already resolved with err.
func Failed[T any](loop *Loop, err error) *Future[T] {
	f := NewFuture[T](loop)
	var zero T
	f.Resolve(zero, err)
	return f
}

// Resolve settles the future. Only the first call has any effect. Callbacks
// registered with Then are deferred onto the loop, never run inline.
func (f *Future[T]) Resolve(v T, err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.val, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb := cb
		f.loop.Defer(func() { cb(v, err) })
	}
}

// Then registers fn to run on the loop once the future resolves.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()

	f.loop.Defer(func() { fn(v, err) })
}

// Done is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the resolved value. Before resolution it returns the zero
// value and ErrPending.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.resolved {
		var zero T
		return zero, ErrPending
	}
	return f.val, f.err
}

// Wait blocks until the future resolves or ctx is done. Some other goroutine
// must be driving the loop.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}
