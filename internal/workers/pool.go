// Package workers provides a fixed-size goroutine pool with an explicit lifecycle.
package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker pool closed")

// DefaultSize returns max(2, NumCPU).
func DefaultSize() int {
	return max(2, runtime.NumCPU())
}

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	size  int
	tasks chan func()
	quit  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// New starts a pool of size workers. A size below 1 selects DefaultSize.
func New(size int) *Pool {
	if size < 1 {
		size = DefaultSize()
	}

	p := &Pool{
		size:  size,
		tasks: make(chan func()),
		quit:  make(chan struct{}),
	}

	p.wg.Add(size)

	for i := 0; i < size; i++ {
		go p.work()
	}

	return p
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit blocks until a worker accepts task, ctx ends, or the pool is closed.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	select {
	case <-p.quit:
		return ErrClosed
	default:
	}

	select {
	case <-p.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Close stops the workers. Tasks already running are not interrupted but
// are not waited for either; nothing new is accepted.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
}

// Wait blocks until every worker has exited. It is only meaningful after Close.
func (p *Pool) Wait() {
	p.wg.Wait()
}
