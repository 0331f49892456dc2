// Package worker consumes the notification queue and records delivery
// outcomes.
package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lithovolt/warranty-service/internal/config"
	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/queue"
	"github.com/lithovolt/warranty-service/internal/repository"
)

const claimEntityType = "warranty_claim"

// NotificationWorker drains queued notifications. Each message gets up
// to MaxAttempts deliveries before it is logged as failed; the claim
// lifecycle never observes any of this.
type NotificationWorker struct {
	queue  queue.NotificationQueue
	logs   repository.NotificationLogRepository
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(q queue.NotificationQueue, logs repository.NotificationLogRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationWorker {
	return &NotificationWorker{queue: q, logs: logs, logger: logger, cfg: cfg}
}

// Run blocks consuming the queue until the context is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	poll := time.Duration(w.cfg.PollTimeoutSec) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}
	w.logger.Info("notification worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("notification worker stopped")
			return
		}
		msg, err := w.queue.Dequeue(ctx, poll)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("notification worker stopped")
				return
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		w.Process(ctx, msg)
	}
}

// Process attempts delivery of one message, re-enqueueing on failure
// until the attempt budget is spent.
func (w *NotificationWorker) Process(ctx context.Context, msg *domain.NotificationMessage) {
	err := w.deliver(msg)
	if err == nil {
		w.record(ctx, msg, domain.NotificationSent, "")
		return
	}

	msg.Attempts++
	if msg.Attempts < w.maxAttempts() {
		w.logger.Warn("delivery failed, requeueing",
			zap.String("message_id", msg.ID),
			zap.Int("attempts", msg.Attempts),
			zap.Error(err))
		if qerr := w.queue.Enqueue(ctx, msg); qerr != nil {
			w.logger.Error("requeue failed", zap.String("message_id", msg.ID), zap.Error(qerr))
			w.record(ctx, msg, domain.NotificationFailed, qerr.Error())
		}
		return
	}
	w.logger.Error("delivery abandoned",
		zap.String("message_id", msg.ID),
		zap.Int("attempts", msg.Attempts),
		zap.Error(err))
	w.record(ctx, msg, domain.NotificationFailed, err.Error())
}

// deliver pushes the message out on its channel. Email needs a sender
// address; in-app messages are considered delivered once logged.
func (w *NotificationWorker) deliver(msg *domain.NotificationMessage) error {
	switch msg.Channel {
	case domain.ChannelEmail:
		if strings.TrimSpace(w.cfg.EmailFrom) == "" {
			return errors.New("no sender address configured")
		}
		w.logger.Info("email notification",
			zap.String("from", w.cfg.EmailFrom),
			zap.String("recipient_id", msg.RecipientID),
			zap.String("title", msg.Title))
		return nil
	case domain.ChannelInApp:
		w.logger.Info("in-app notification",
			zap.String("recipient_id", msg.RecipientID),
			zap.String("title", msg.Title))
		return nil
	default:
		return errors.New("unknown channel " + string(msg.Channel))
	}
}

func (w *NotificationWorker) record(ctx context.Context, msg *domain.NotificationMessage, status domain.NotificationStatus, errMsg string) {
	entry := &domain.NotificationLog{
		RecipientID:  msg.RecipientID,
		Channel:      msg.Channel,
		Status:       status,
		Title:        msg.Title,
		Body:         msg.Body,
		EntityType:   claimEntityType,
		EntityID:     msg.ClaimID,
		ErrorMessage: errMsg,
	}
	if err := w.logs.Create(ctx, entry); err != nil {
		w.logger.Error("failed to persist notification log",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}

func (w *NotificationWorker) maxAttempts() int {
	if w.cfg.MaxAttempts <= 0 {
		return 3
	}
	return w.cfg.MaxAttempts
}
