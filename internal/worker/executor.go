// Package worker runs remote store operations on a single background goroutine
// and hands results back through futures.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/tastylog/backend/internal/domain"
)

type job struct {
	run   func()
	abort func(error)
}

// Executor owns one goroutine that runs submitted jobs in submission order.
type Executor struct {
	jobs    chan job
	stopCh  chan struct{}
	stopped chan struct{}

	// mu keeps Stop from closing the queue while a Submit is mid-send
	mu     sync.RWMutex
	closed bool
}

// NewExecutor starts the background goroutine. queueSize bounds how many jobs
// may wait before Submit blocks.
func NewExecutor(queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = 64
	}

	e := &Executor{
		jobs:    make(chan job, queueSize),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go e.run()
	return e
}

func (e *Executor) run() {
	defer close(e.stopped)

	for {
		select {
		case j := <-e.jobs:
			// Stop wins over anything still queued
			select {
			case <-e.stopCh:
				j.abort(domain.ErrExecutorClosed)
				e.drain()
				return
			default:
			}
			j.run()
		case <-e.stopCh:
			e.drain()
			return
		}
	}
}

// drain fails every job left in the queue. Once stopCh is closed no Submit
// can add to it.
func (e *Executor) drain() {
	for {
		select {
		case j := <-e.jobs:
			j.abort(domain.ErrExecutorClosed)
		default:
			return
		}
	}
}

// Stop finishes the running job, fails every queued job with ErrExecutorClosed
// and waits for the goroutine to exit.
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.stopCh)
	}
	e.mu.Unlock()
	<-e.stopped
}

func (e *Executor) enqueue(ctx context.Context, j job) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return domain.ErrExecutorClosed
	}
	select {
	case e.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues fn on the executor. fn runs with a context that keeps ctx's
// values but not its cancellation: once started, an operation runs to completion.
func Submit[T any](ctx context.Context, e *Executor, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	taskCtx := context.WithoutCancel(ctx)

	j := job{
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Worker] recovered panic: %v", r)
					var zero T
					f.complete(zero, fmt.Errorf("background task panicked: %v", r))
				}
			}()
			value, err := fn(taskCtx)
			f.complete(value, err)
		},
		abort: func(err error) {
			var zero T
			f.complete(zero, err)
		},
	}

	if err := e.enqueue(ctx, j); err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}
