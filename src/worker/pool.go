package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/session"
)

// RunFunc performs one capture session for sel.
type RunFunc func(ctx context.Context, sel region.Selection) (session.Result, error)

// ResultCallback is invoked on session completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(res session.Result, err error)

// Pool runs at most one capture session at a time. A Submit while a
// session is queued or running is rejected rather than queued behind it.
type Pool struct {
	run    RunFunc
	jobs   chan job
	active atomic.Bool
	wg     sync.WaitGroup
}

type job struct {
	ctx context.Context
	sel region.Selection
	cb  ResultCallback
}

// New starts the single worker goroutine.
func New(run RunFunc) *Pool {
	p := &Pool{run: run, jobs: make(chan job, 1)}
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for j := range p.jobs {
		log.Printf("Worker: starting capture session for %s", j.sel)
		res, err := p.run(j.ctx, j.sel)
		log.Printf("Worker: session completed, %dx%d err=%v", res.Width, res.Height, err)
		p.active.Store(false)
		if j.cb != nil {
			j.cb(res, err)
		}
	}
}

// Submit hands sel to the worker. Returns false if a session is already in flight.
func (p *Pool) Submit(ctx context.Context, sel region.Selection, cb ResultCallback) bool {
	if !p.active.CompareAndSwap(false, true) {
		return false
	}
	p.jobs <- job{ctx: ctx, sel: sel, cb: cb}
	return true
}

// Busy reports whether a session is queued or running.
func (p *Pool) Busy() bool { return p.active.Load() }

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
