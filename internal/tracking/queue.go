package tracking

import (
	"sync"

	"beacon/internal/dispatch"
	"beacon/pkg/metrics"
)

// Queue accumulates assembled events during one request. Events keep their
// queueing order; Drain empties the queue for the teardown flush.
type Queue struct {
	mu     sync.Mutex
	events []dispatch.Event
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(events ...dispatch.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, events...)
	metrics.SetQueueSize(len(q.events))
}

func (q *Queue) Drain() []dispatch.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.events
	q.events = nil
	metrics.SetQueueSize(0)
	return events
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.events)
}
