package queue

import (
	"context"
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

type memoryQueue struct {
	ch chan *domain.NotificationMessage
}

// NewMemoryQueue returns a channel-backed queue with the given capacity.
// It is used by tests and is safe for concurrent producers and consumers.
func NewMemoryQueue(capacity int) NotificationQueue {
	return &memoryQueue{ch: make(chan *domain.NotificationMessage, capacity)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, msg *domain.NotificationMessage) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.NotificationMessage, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *memoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}
