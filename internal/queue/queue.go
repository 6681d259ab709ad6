package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of job identifiers. Enqueue order is the sole
// admission-order authority: identical submission order yields identical
// service order.
type Queue struct {
	mu   sync.Mutex
	ids  []string
	wake chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends the id to the tail of the queue and returns the
// resulting queue length, so callers can derive an admission position
// without a second lock acquisition.
func (q *Queue) Enqueue(id string) int {
	q.mu.Lock()
	q.ids = append(q.ids, id)
	n := len(q.ids)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return n
}

// Dequeue removes and returns the oldest id, blocking until an id is
// available or the context is cancelled.
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.ids) > 0 {
			id := q.ids[0]
			q.ids = q.ids[1:]
			q.mu.Unlock()
			return id, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the number of pending ids.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
