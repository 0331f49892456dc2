// Package queue provides the durable hand-off between the claim
// lifecycle and the notification worker.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ErrEmpty signals that no message was available within the poll window.
var ErrEmpty = errors.New("notification queue empty")

// NotificationQueue is a FIFO of pending notification messages.
type NotificationQueue interface {
	Enqueue(ctx context.Context, msg *domain.NotificationMessage) error
	// Dequeue blocks up to timeout and returns ErrEmpty when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.NotificationMessage, error)
	Len(ctx context.Context) (int64, error)
}

type redisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue backed by a Redis list under key.
func NewRedisQueue(client *redis.Client, key string) NotificationQueue {
	return &redisQueue{client: client, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, msg *domain.NotificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.NotificationMessage, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, errors.New("unexpected BRPOP reply shape")
	}
	var msg domain.NotificationMessage
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (q *redisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
