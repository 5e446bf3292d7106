package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(3)
	pool.Start(ctx)

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 50; i++ {
		i := i
		if err := pool.Submit(ctx, func(ctx context.Context) error {
			ran.Add(1)
			if i%10 == 0 {
				return boom
			}
			return nil
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	errs := pool.Stop()
	if ran.Load() != 50 {
		t.Errorf("ran %d jobs, want 50", ran.Load())
	}
	if len(errs) != 5 {
		t.Errorf("got %d errors, want 5", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("unexpected error %v", err)
		}
	}
}

func TestWorkerPoolSubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1)
	// Not started: the channel fills and Submit must give up on ctx.
	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 2; i++ {
		if err := pool.Submit(ctx, func(context.Context) error { return nil }); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	cancel()
	if err := pool.Submit(ctx, func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}
}
