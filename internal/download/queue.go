package download

import (
	"sync"

	"github.com/ytget/tubegrab/internal/model"
)

// DefaultQueueSize is the event queue capacity when none is configured.
const DefaultQueueSize = 256

// EventQueue is the bounded channel between a worker and the presentation
// layer. Posts are serialized, so events leave in the order they were posted.
type EventQueue struct {
	mu sync.Mutex
	ch chan model.ProgressEvent
}

// NewEventQueue creates a queue holding up to size events.
func NewEventQueue(size int) *EventQueue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &EventQueue{ch: make(chan model.ProgressEvent, size)}
}

// Events returns the receive side. The channel is never closed.
func (q *EventQueue) Events() <-chan model.ProgressEvent {
	return q.ch
}

// Post enqueues ev, blocking while the queue is full. before, when non-nil,
// runs after earlier posts have been enqueued and before ev is.
func (q *EventQueue) Post(ev model.ProgressEvent, before func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if before != nil {
		before()
	}
	q.ch <- ev
}

// TryPost enqueues ev unless the queue is full.
func (q *EventQueue) TryPost(ev model.ProgressEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Len returns the number of undelivered events.
func (q *EventQueue) Len() int {
	return len(q.ch)
}
