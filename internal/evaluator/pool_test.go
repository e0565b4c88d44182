package evaluator

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := newPool(4)
	p.start(context.Background())

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		if err := p.submit(context.Background(), func() { ran.Add(1) }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	p.close()

	if got := ran.Load(); got != 50 {
		t.Errorf("ran %d jobs, want 50", got)
	}
}

func TestPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newPool(1)
	p.start(ctx)
	cancel()

	// Once canceled, submission must not block forever; it either
	// lands in the buffer or reports the cancellation.
	for i := 0; i < 100; i++ {
		if err := p.submit(ctx, func() {}); err != nil {
			p.close()
			return
		}
	}
	t.Fatal("submit never reported cancellation")
}

func TestPoolDefaultWorkers(t *testing.T) {
	if p := newPool(0); p.workers != 8 {
		t.Errorf("default workers = %d, want 8", p.workers)
	}
}
