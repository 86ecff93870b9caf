package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool manages a pool of workers for concurrent task execution. The
// evaluator uses it to process independent expiration partitions in parallel.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	running   atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of
// workers. If workers is 0, it defaults to runtime.NumCPU().
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*16),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the worker pool.
func (p *WorkerPool) Start() {
	if p.running.Swap(true) {
		return // Already running
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			task()
		}
	}
}

// Submit submits a task to the worker pool, blocking while the queue is full.
// Returns false if the pool is not running.
func (p *WorkerPool) Submit(task func()) bool {
	if !p.running.Load() {
		return false
	}
	p.taskQueue <- task
	return true
}

// Stop stops the worker pool and waits for all workers to finish.
func (p *WorkerPool) Stop() {
	if !p.running.Swap(false) {
		return // Not running
	}

	close(p.taskQueue)
	p.wg.Wait()
	p.cancel()
}

// runPartitioned fans n independent partitions out over a temporary pool and
// waits for all of them. Small inputs run inline; the goroutine machinery is
// not worth it below a few partitions.
func runPartitioned(n int, task func(i int)) {
	if n <= 1 || runtime.NumCPU() == 1 {
		for i := 0; i < n; i++ {
			task(i)
		}
		return
	}

	pool := NewWorkerPool(0)
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			task(i)
		})
	}
	wg.Wait()
}
