package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
	"go.uber.org/atomic"
)

// Dispatcher runs fire-and-forget work away from the caller.
type Dispatcher interface {
	Submit(f func())
}

// Pool is a Dispatcher backed by a fixed amount of goroutines. Its queue is unbounded, so Submit never
// blocks: end-of-phase collaborators may wait on the very world whose tick submitted them.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	pending atomic.Int64
	wg      sync.WaitGroup
}

// NewPool starts a Pool with n workers. If n is below one, runtime.NumCPU() workers are started.
func NewPool(n int) *Pool {
	if n < 1 {
		n = runtime.NumCPU()
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Submit queues f to be run by one of the workers and returns immediately. Work submitted after Close is
// dropped.
func (p *Pool) Submit(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, f)
	p.pending.Inc()
	p.cond.Signal()
}

// Pending returns the amount of submitted work that has not finished running yet.
func (p *Pool) Pending() int {
	return int(p.pending.Load())
}

// Close stops accepting work and waits for queued work to complete.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		f, ok := p.next()
		if !ok {
			return
		}
		p.run(f)
		p.pending.Dec()
	}
}

// next blocks until work is queued and returns it. It returns false once the Pool is closed and the
// queue is drained.
func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	f := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return f, true
}

func (p *Pool) run(f func()) {
	defer sentry.Recover()
	f()
}

// Inline is a Dispatcher that runs work on the calling goroutine.
type Inline struct{}

func (Inline) Submit(f func()) {
	defer sentry.Recover()
	f()
}
