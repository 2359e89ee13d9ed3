// Package scheduler runs rendering work cooperatively on a single goroutine.
//
// A Loop is a task queue. Long computations are split into chunks, and each
// chunk re-enqueues the next one, so anything else queued on the loop (timer
// callbacks, viewer requests, progress updates) gets a turn between chunks.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Loop is a FIFO of deferred tasks executed one at a time by whoever drives
// it (Run, RunUntil or Drain). Defer may be called from any goroutine; tasks
// always execute on the driving goroutine.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Defer enqueues fn to run on a later turn of the loop.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc enqueues fn once d has elapsed. The returned timer can stop it
// before it is enqueued.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() { l.Defer(fn) })
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Step runs the oldest queued task, if any.
func (l *Loop) Step() bool {
	fn, ok := l.pop()
	if !ok {
		return false
	}
	fn()
	return true
}

// Drain runs tasks until the queue is empty, including tasks enqueued while
// draining. It returns the number of tasks run. Tasks scheduled with
// AfterFunc that have not fired yet are not waited for.
func (l *Loop) Drain() int {
	n := 0
	for l.Step() {
		n++
	}
	return n
}

// Run executes tasks as they arrive until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// RunUntil executes tasks until done is closed or ctx is done. A nil done
// never fires.
func (l *Loop) RunUntil(ctx context.Context, done <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-done:
			return nil
		default:
		}

		if l.Step() {
			continue
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-done:
			return nil
		case <-l.wake:
		}
	}
}
