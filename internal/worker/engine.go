package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

const queueLen = 16

// Engine is the production Scheduler. Each key gets its own goroutine
// draining a FIFO queue, so tasks for one conversation never overlap.
// Delayed tasks re-enter the same queue when their timer fires, keeping
// the ordering guarantee relative to tasks scheduled after the delay
// elapses. Idle runners are reaped after idleTimeout.
type Engine struct {
	idleTimeout time.Duration

	mu      sync.Mutex
	runners map[int64]*runner
	stopped bool
}

type runner struct {
	taskCh chan Task
	stopCh chan struct{}
}

func NewEngine(idleTimeout time.Duration) *Engine {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &Engine{
		idleTimeout: idleTimeout,
		runners:     make(map[int64]*runner),
	}
}

// Schedule enqueues the task for the key's runner. A positive delay defers
// the enqueue, not the execution slot: the task joins the queue when the
// timer fires.
func (e *Engine) Schedule(key int64, delay time.Duration, task Task) {
	if task == nil {
		return
	}
	if delay > 0 {
		time.AfterFunc(delay, func() { e.enqueue(key, task) })
		return
	}
	e.enqueue(key, task)
}

// Stop shuts down all runners. Queued tasks not yet started are dropped.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	for key, r := range e.runners {
		close(r.stopCh)
		delete(e.runners, key)
	}
}

func (e *Engine) enqueue(key int64, task Task) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	r, ok := e.runners[key]
	if !ok {
		r = &runner{
			taskCh: make(chan Task, queueLen),
			stopCh: make(chan struct{}),
		}
		e.runners[key] = r
		go e.runLoop(key, r)
	}
	select {
	case r.taskCh <- task:
		e.mu.Unlock()
		return
	default:
	}
	e.mu.Unlock()
	// Queue full. Block outside the lock; the runner cannot be reaped
	// while its queue is non-empty.
	select {
	case r.taskCh <- task:
	case <-r.stopCh:
	}
}

func (e *Engine) runLoop(key int64, r *runner) {
	idle := time.NewTimer(e.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-r.stopCh:
			debugLog("runner %d stopped", key)
			return
		case task := <-r.taskCh:
			select {
			case <-r.stopCh:
				debugLog("runner %d stopped", key)
				return
			default:
			}
			e.runTask(key, task)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(e.idleTimeout)
		case <-idle.C:
			e.mu.Lock()
			if len(r.taskCh) == 0 {
				delete(e.runners, key)
				e.mu.Unlock()
				debugLog("runner %d reaped after idle", key)
				return
			}
			e.mu.Unlock()
			idle.Reset(e.idleTimeout)
		}
	}
}

func (e *Engine) runTask(key int64, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("background task for conversation %d panicked: %v", key, rec)
		}
	}()
	task(context.Background())
}
