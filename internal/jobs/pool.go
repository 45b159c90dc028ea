package jobs

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Pool runs detached tasks with bounded concurrency. Submit never blocks
// the caller: tasks queue on their own goroutine and wait for a worker
// slot. Panics are confined to the task that raised them.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool creates a pool allowing at most size tasks to run at once.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Submit schedules fn to run as soon as a worker slot frees up and
// returns immediately.
func (p *Pool) Submit(name string, fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in pool task",
					"task", name,
					"error", r,
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// Drain blocks until all submitted tasks have finished.
func (p *Pool) Drain() {
	p.wg.Wait()
}
