// Package parallel runs batches of independent jobs on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines.
//
// Each worker has its own queue; jobs are dealt round-robin and an idle
// worker steals from the other queues, so one slow band does not hold the
// whole batch back.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool of the given number of workers. Zero or a negative
// count uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), max(workers*4, 8))
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			return
		case job := <-own:
			job()
			continue
		default:
		}

		if job := p.steal(id); job != nil {
			job()
			continue
		}
		select {
		case <-p.done:
			return
		case job := <-own:
			job()
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.queues {
		if i == id {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// Run calls fn(i) for every i in [0, n) on the pool and waits for all of
// them. On a closed pool the jobs run on the calling goroutine.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if !p.running.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		job := func() {
			defer wg.Done()
			fn(i)
		}
		select {
		case p.queues[i%p.workers] <- job:
		case <-p.done:
			job()
		}
	}
	wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Close stops the workers. Jobs still queued run on the calling goroutine
// before Close returns. Close must not race with Run; it is safe to call
// more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
	for _, q := range p.queues {
		for {
			select {
			case job := <-q:
				job()
				continue
			default:
			}
			break
		}
	}
}
