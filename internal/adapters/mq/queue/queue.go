// Package queue defines the contract for enqueuing and consuming pending
// transfers.
//
// The settlement pipeline is asynchronous: the HTTP layer acknowledges a
// gasless submission and the relayer workers drain this queue.
package queue

import (
	"context"
	"sync"

	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Transfer is the payload type flowing through the queue.
type Transfer = model.Transfer

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a transfer to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t Transfer) bool

	// Dequeue returns a channel that receives transfers as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Transfer

	// Len returns the current number of queued transfers.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// transfers can be enqueued and the dequeue channel is closed.
	// Closing again returns ErrClosed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	transfers  chan Transfer
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.transfers = make(chan Transfer, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a transfer to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Transfer) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.transfers) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.transfers <- t:
		metrics.RecordQueueEnqueue()
		q.publishSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives transfers as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Transfer {
	out := make(chan Transfer)
	go func() {
		defer close(out)
		for t := range q.transfers {
			select {
			case out <- t:
				metrics.RecordQueueDequeue()
				q.publishSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued transfers.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.transfers)
	q.publishSize()
	return size
}

// Close gracefully shuts down the queue. Closing an already-closed queue
// returns ErrClosed.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	close(q.transfers)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishSize() {
	size := len(q.transfers)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
