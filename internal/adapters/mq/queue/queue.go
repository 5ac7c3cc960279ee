// Package queue defines the contract for enqueuing and consuming refresh events.
//
// The in-memory implementation is a bounded buffered channel. Enqueue never
// blocks: a full queue rejects the event and the caller reports backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Event represents the payload type flowing through the queue.
type Event = model.RefreshEvent

// Rejection reasons recorded in metrics.
const (
	rejectClosed    = "closed"
	rejectFull      = "full"
	rejectCancelled = "cancelled"
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event to the queue.
	// Returns false if the queue is full or closed and the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns the channel events are delivered on.
	// The channel is closed when the queue is closed and drained.
	Dequeue() <-chan Event

	// TryDequeue returns the next pending event without blocking.
	TryDequeue() (Event, bool)

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of pending events.
	Capacity() int

	// Close stops accepting events. Pending events can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected(rejectClosed)
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueRejected(rejectCancelled)
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.events))
		return true
	default:
		metrics.RecordQueueRejected(rejectFull)
		return false
	}
}

// Dequeue returns the channel events are delivered on.
func (q *InMemoryQueue) Dequeue() <-chan Event {
	return q.events
}

// TryDequeue returns the next pending event without blocking.
func (q *InMemoryQueue) TryDequeue() (Event, bool) {
	select {
	case e, ok := <-q.events:
		if !ok {
			return Event{}, false
		}
		metrics.UpdateQueueSize(len(q.events))
		return e, true
	default:
		return Event{}, false
	}
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the maximum number of pending events.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
