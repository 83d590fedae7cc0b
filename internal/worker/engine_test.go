package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEngineRunsTasksInOrder(t *testing.T) {
	e := NewEngine(time.Minute)
	defer e.Stop()

	const n = 20
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 0; i < n; i++ {
		i := i
		e.Schedule(1, 0, func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == n-1 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("tasks did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != n {
		t.Fatalf("expected %d tasks, ran %d", n, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order broken at %d: %v", i, got)
		}
	}
}

func TestEngineNeverOverlapsSameKey(t *testing.T) {
	e := NewEngine(time.Minute)
	defer e.Stop()

	const n = 30
	var inFlight, overlaps int32
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		e.Schedule(7, 0, func(context.Context) {
			defer wg.Done()
			if atomic.AddInt32(&inFlight, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})
	}

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(10 * time.Second):
		t.Fatalf("tasks did not finish")
	}
	if atomic.LoadInt32(&overlaps) != 0 {
		t.Fatalf("tasks overlapped %d times", overlaps)
	}
}

func TestEngineIndependentKeysRunConcurrently(t *testing.T) {
	e := NewEngine(time.Minute)
	defer e.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	otherRan := make(chan struct{})

	e.Schedule(1, 0, func(context.Context) {
		close(started)
		<-block
	})
	<-started
	e.Schedule(2, 0, func(context.Context) {
		close(otherRan)
	})

	select {
	case <-otherRan:
	case <-time.After(2 * time.Second):
		t.Fatalf("task on another key was blocked")
	}
	close(block)
}

func TestEngineDelayedTask(t *testing.T) {
	e := NewEngine(time.Minute)
	defer e.Stop()

	start := time.Now()
	done := make(chan struct{})
	e.Schedule(3, 50*time.Millisecond, func(context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("delayed task never ran")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("task ran after %v, before the delay elapsed", elapsed)
	}
}

func TestEngineRecoversFromPanic(t *testing.T) {
	e := NewEngine(time.Minute)
	defer e.Stop()

	done := make(chan struct{})
	e.Schedule(4, 0, func(context.Context) {
		panic("boom")
	})
	e.Schedule(4, 0, func(context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not survive the panic")
	}
}

func TestEngineStopDropsPendingTasks(t *testing.T) {
	e := NewEngine(time.Minute)

	block := make(chan struct{})
	started := make(chan struct{})
	var ran int32

	e.Schedule(5, 0, func(context.Context) {
		close(started)
		<-block
	})
	<-started
	e.Schedule(5, 0, func(context.Context) {
		atomic.AddInt32(&ran, 1)
	})

	e.Stop()
	close(block)

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("queued task ran after Stop")
	}

	// Schedule after Stop is a no-op.
	e.Schedule(5, 0, func(context.Context) {
		atomic.AddInt32(&ran, 1)
	})
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("task ran on stopped engine")
	}
}

func TestEngineReapsIdleRunners(t *testing.T) {
	e := NewEngine(20 * time.Millisecond)
	defer e.Stop()

	done := make(chan struct{})
	e.Schedule(6, 0, func(context.Context) {
		close(done)
	})
	<-done

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e.mu.Lock()
		n := len(e.runners)
		e.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("idle runner was not reaped")
}

func TestImmediateRunsInline(t *testing.T) {
	ran := false
	Immediate{}.Schedule(1, time.Hour, func(context.Context) {
		ran = true
	})
	if !ran {
		t.Fatalf("task did not run inline")
	}
	Immediate{}.Schedule(1, 0, nil)
}
