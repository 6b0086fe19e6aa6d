package scheduler

import (
	"github.com/eapache/queue"

	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
)

// taskQueue is the FIFO of calls waiting for a ready slot. It is owned by the
// dispatcher goroutine and is not safe for concurrent use.
type taskQueue struct {
	items    *queue.Queue
	capacity int
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{items: queue.New(), capacity: capacity}
}

func (q *taskQueue) Len() int { return q.items.Length() }

func (q *taskQueue) Enqueue(c *pendingCall) error {
	if q.capacity > 0 && q.items.Length() >= q.capacity {
		return srvErrors.NewQueueFullError(q.capacity)
	}
	q.items.Add(c)
	return nil
}

// DequeueHead returns nil when the queue is empty.
func (q *taskQueue) DequeueHead() *pendingCall {
	if q.items.Length() == 0 {
		return nil
	}
	return q.items.Remove().(*pendingCall)
}

func (q *taskQueue) drain() []*pendingCall {
	calls := make([]*pendingCall, 0, q.items.Length())
	for c := q.DequeueHead(); c != nil; c = q.DequeueHead() {
		calls = append(calls, c)
	}
	return calls
}
