package queue

import (
	"context"
	"time"
)

// TakeResult describes the outcome of a bounded queue poll.
type TakeResult int

const (
	// TakeTimeout means nothing arrived within the poll window.
	TakeTimeout TakeResult = iota
	// TakeTask means a task was claimed by the caller.
	TakeTask
	// TakeStop means the caller consumed a shutdown sentinel.
	TakeStop
)

type envelope struct {
	task Task
	stop bool
}

// Queue is the FIFO hand-off channel between the watcher and the workers.
// Each envelope is delivered to exactly one receiver.
type Queue struct {
	ch chan envelope
}

// New returns a queue holding at most capacity undelivered envelopes.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan envelope, capacity)}
}

// Put enqueues a task, blocking until space is available or ctx is done.
func (q *Queue) Put(ctx context.Context, task Task) error {
	select {
	case q.ch <- envelope{task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutStop enqueues one shutdown sentinel. Exactly one receiver consumes it;
// it is never rebroadcast, so callers enqueue one per worker.
func (q *Queue) PutStop(ctx context.Context) error {
	select {
	case q.ch <- envelope{stop: true}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take claims the next envelope, waiting up to timeout. The zero Task is
// returned unless the result is TakeTask.
func (q *Queue) Take(timeout time.Duration) (Task, TakeResult) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case env := <-q.ch:
		if env.stop {
			return Task{}, TakeStop
		}
		return env.task, TakeTask
	case <-timer.C:
		return Task{}, TakeTimeout
	}
}

// Len reports the number of undelivered envelopes, tasks and sentinels alike.
func (q *Queue) Len() int {
	return len(q.ch)
}
