package worker

import (
	"context"
	"time"
)

// Task is a unit of background work. The context is supplied by the
// scheduler that runs the task.
type Task func(ctx context.Context)

// Scheduler runs tasks out of band. Tasks sharing a key run strictly in
// the order they were scheduled, one at a time. Once accepted a task runs
// to completion; there is no cancellation handle.
type Scheduler interface {
	Schedule(key int64, delay time.Duration, task Task)
}

// Immediate runs tasks inline on the calling goroutine and ignores the
// delay. Used in tests to make pipeline runs synchronous.
type Immediate struct{}

func (Immediate) Schedule(_ int64, _ time.Duration, task Task) {
	if task != nil {
		task(context.Background())
	}
}
