package evaluator

import (
	"context"
	"sync"
)

// pool runs per-item evaluation with bounded concurrency so a large
// batch of links or rules cannot overwhelm the backing store.
type pool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup
}

// newPool creates a pool with n workers. If n <= 0, it defaults to 8.
func newPool(n int) *pool {
	if n <= 0 {
		n = 8
	}
	return &pool{
		workers: n,
		jobs:    make(chan func(), n*2),
	}
}

// start begins the worker goroutines. Workers drain the job queue and
// exit when it closes or the context is canceled.
func (p *pool) start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					// The job runs to completion even if the context is
					// canceled mid-flight; each item's state mutation
					// stays atomic.
					job()
				}
			}
		}()
	}
}

// submit queues a job. Returns the context error if the run was
// canceled, in which case no further work should be issued.
func (p *pool) submit(ctx context.Context, job func()) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// close signals no more jobs and waits for in-flight work to finish.
func (p *pool) close() {
	close(p.jobs)
	p.wg.Wait()
}
