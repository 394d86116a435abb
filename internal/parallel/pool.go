package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one unit of parallel work. worker identifies the goroutine running
// it (0 <= worker < Workers()), so callers can keep per-worker scratch state
// without locking. index is the job's position in the batch.
type Job func(worker, index int)

// task is a queued job together with its batch's completion group.
type task struct {
	fn    Job
	index int
	done  *sync.WaitGroup
}

// WorkerPool runs batches of jobs on a fixed set of goroutines.
//
// Each worker owns a queue. Jobs are dealt round-robin; a worker whose queue
// is empty steals from the others, which balances tiles that finish early
// (rays missing every bound) against tiles that march deep.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan task
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan task, queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(id, own)
			return
		case t := <-own:
			p.run(id, t)
		default:
			if t, ok := p.steal(id); ok {
				p.run(id, t)
				continue
			}
			select {
			case <-p.done:
				p.drain(id, own)
				return
			case t := <-own:
				p.run(id, t)
			}
		}
	}
}

func (p *WorkerPool) run(worker int, t task) {
	defer t.done.Done()
	t.fn(worker, t.index)
}

func (p *WorkerPool) drain(worker int, queue chan task) {
	for {
		select {
		case t := <-queue:
			p.run(worker, t)
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(self int) (task, bool) {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case t := <-p.queues[i]:
			return t, true
		default:
		}
	}
	return task{}, false
}

// Run executes fn for every index in [0, n) and waits for all of them.
//
// If the pool has been closed the jobs run sequentially on the calling
// goroutine as worker 0, so a render never silently drops pixels.
func (p *WorkerPool) Run(n int, fn Job) {
	if n <= 0 || fn == nil {
		return
	}
	if !p.running.Load() {
		for i := range n {
			fn(0, i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		t := task{fn: fn, index: i, done: &wg}
		select {
		case p.queues[i%p.workers] <- t:
		case <-p.done:
			// Closed mid-batch: finish inline.
			fn(0, i)
			wg.Done()
		}
	}
	wg.Wait()
}

// ExecuteAll runs every function and waits for completion.
func (p *WorkerPool) ExecuteAll(work []func()) {
	p.Run(len(work), func(_, i int) {
		if work[i] != nil {
			work[i]()
		}
	})
}

// Close stops the pool after draining queued work.
// Close is safe to call multiple times but must not race with Run.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the approximate number of queued jobs.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
