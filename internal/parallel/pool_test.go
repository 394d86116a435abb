package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if got, want := pool.Workers(), runtime.GOMAXPROCS(0); got != want {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d", n, got, want)
		}
		pool.Close()
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestWorkerPool_RunVisitsEveryIndexOnce(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const n = 500
	counts := make([]atomic.Int32, n)
	pool.Run(n, func(_, i int) {
		counts[i].Add(1)
	})

	for i := range counts {
		if got := counts[i].Load(); got != 1 {
			t.Fatalf("index %d ran %d times, want 1", i, got)
		}
	}
}

func TestWorkerPool_RunWorkerIDsInRange(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var bad atomic.Int32
	pool.Run(200, func(worker, _ int) {
		if worker < 0 || worker >= 3 {
			bad.Add(1)
		}
	})
	if bad.Load() != 0 {
		t.Errorf("%d jobs saw an out-of-range worker id", bad.Load())
	}
}

func TestWorkerPool_RunPerWorkerStateIsExclusive(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Each worker mutates its own slot without locks; a concurrent writer
	// on the same slot would be reported by the race detector.
	scratch := make([]int, pool.Workers())
	pool.Run(1000, func(worker, _ int) {
		scratch[worker]++
	})

	total := 0
	for _, v := range scratch {
		total += v
	}
	if total != 1000 {
		t.Errorf("total = %d, want 1000", total)
	}
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.Run(0, func(int, int) { t.Error("job should not run") })
	pool.Run(5, nil)
}

func TestWorkerPool_RunAfterCloseRunsInline(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	if pool.IsRunning() {
		t.Fatal("pool should not be running after Close")
	}

	ran := 0
	pool.Run(10, func(worker, _ int) {
		if worker != 0 {
			t.Errorf("inline job got worker %d, want 0", worker)
		}
		ran++
	})
	if ran != 10 {
		t.Errorf("ran %d jobs, want 10", ran)
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var mu sync.Mutex
	seen := make(map[int]bool)
	work := make([]func(), 10)
	for i := range work {
		work[i] = func() {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		}
	}
	pool.ExecuteAll(work)

	for i := 0; i < 10; i++ {
		if !seen[i] {
			t.Errorf("missing index %d in results", i)
		}
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.QueuedWork() != 0 {
		t.Errorf("QueuedWork() = %d, want 0", pool.QueuedWork())
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_Run(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Run(1200, func(int, int) {})
	}
}
