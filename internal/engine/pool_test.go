package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		})
		assert.True(t, ok)
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int64(100), atomic.LoadInt64(&counter))
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()

	assert.False(t, pool.Submit(func() {}))
}

func TestWorkerPoolDoubleStart(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start() // no-op
	defer pool.Stop()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done
}

func TestRunPartitioned(t *testing.T) {
	for _, n := range []int{0, 1, 2, 16, 100} {
		seen := make([]int64, n)
		runPartitioned(n, func(i int) {
			atomic.AddInt64(&seen[i], 1)
		})
		for i, count := range seen {
			assert.Equal(t, int64(1), count, "partition %d of %d", i, n)
		}
	}
}

func BenchmarkWorkerPool(b *testing.B) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		wg.Add(1)
		pool.Submit(func() {
			wg.Done()
		})
		wg.Wait()
	}
}
