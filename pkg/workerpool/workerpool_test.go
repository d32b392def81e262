package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartshelf/shelfweb/pkg/workerpool"
)

func TestPool_DoReturnsTaskError(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	boom := errors.New("boom")
	err := pool.Do(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestPool_DoConcurrent(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := pool.Do(context.Background(), func(context.Context) error {
				count.Add(1)
				return nil
			}); err != nil {
				t.Errorf("Do returned unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := count.Load(); got != n {
		t.Errorf("expected %d tasks to run, got %d", n, got)
	}
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})

	if err := pool.Submit(func() {
		close(started)
		<-blocker
	}); err != nil {
		t.Fatal(err)
	}
	<-started

	// Queue holds two tasks per worker.
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	err := pool.Submit(func() {})
	if !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}

	close(blocker)
}

func TestPool_DoHonoursContext(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	defer close(blocker)
	_ = pool.Submit(func() { <-blocker })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Do(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	if err := pool.Submit(func() {}); !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
	err := pool.Do(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed from Do, got %v", err)
	}
}

func TestPool_PanicBecomesError(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	err := pool.Do(context.Background(), func(context.Context) error { panic("bad row") })
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}

	// The worker survives.
	if err := pool.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("pool did not recover from panic: %v", err)
	}
}
