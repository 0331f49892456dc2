package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lithovolt/warranty-service/internal/config"
	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/internal/queue"
)

// NotificationService fans claim lifecycle events out to the delivery
// queue. Enqueue failures are logged and never surface to the caller:
// a transition that committed is done, delivery is best effort.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      queue.NotificationQueue
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, q queue.NotificationQueue, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      q,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventClaimStatusChanged, n.handleClaimStatusChanged)
}

type statusTemplate struct {
	ConsumerTitle string
	ConsumerBody  string
	StaffTitle    string
	StaffBody     string
}

// templateFor renders the per-status message pair. PENDING is the
// filing status and produces no notifications.
func templateFor(claimID string, payload events.ClaimStatusChangedPayload) (statusTemplate, bool) {
	switch payload.ToStatus {
	case domain.ClaimUnderReview:
		return statusTemplate{
			ConsumerTitle: "Claim Under Review",
			ConsumerBody:  fmt.Sprintf("Your warranty claim %s is now under review by our team.", claimID),
			StaffTitle:    "New Claim for Review",
			StaffBody:     fmt.Sprintf("Warranty claim %s has been assigned to you for review.", claimID),
		}, true
	case domain.ClaimApproved:
		return statusTemplate{
			ConsumerTitle: "Claim Approved",
			ConsumerBody:  fmt.Sprintf("Your warranty claim %s has been approved. Our team will contact you soon.", claimID),
			StaffTitle:    "Claim Approved",
			StaffBody:     fmt.Sprintf("Claim %s is now approved.", claimID),
		}, true
	case domain.ClaimRejected:
		return statusTemplate{
			ConsumerTitle: "Claim Rejected",
			ConsumerBody:  fmt.Sprintf("Your warranty claim %s has been rejected. Reason: %s", claimID, payload.Notes),
			StaffTitle:    "Claim Rejected",
			StaffBody:     fmt.Sprintf("Claim %s is now rejected.", claimID),
		}, true
	case domain.ClaimResolved:
		return statusTemplate{
			ConsumerTitle: "Claim Resolved",
			ConsumerBody:  fmt.Sprintf("Your warranty claim %s has been resolved.", claimID),
			StaffTitle:    "Claim Resolved",
			StaffBody:     fmt.Sprintf("Claim %s is now resolved.", claimID),
		}, true
	default:
		return statusTemplate{}, false
	}
}

func (n *NotificationService) handleClaimStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ClaimStatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected payload type for claim status event", zap.String("claim_id", event.EntityID))
		return nil
	}
	tpl, ok := templateFor(event.EntityID, payload)
	if !ok {
		return nil
	}

	n.enqueue(ctx, event.EntityID, payload.ToStatus, payload.ConsumerID, domain.ChannelEmail, tpl.ConsumerTitle, tpl.ConsumerBody)
	n.enqueue(ctx, event.EntityID, payload.ToStatus, payload.ConsumerID, domain.ChannelInApp, tpl.ConsumerTitle, tpl.ConsumerBody)

	if payload.AssignedToID != nil {
		n.enqueue(ctx, event.EntityID, payload.ToStatus, *payload.AssignedToID, domain.ChannelInApp, tpl.StaffTitle, tpl.StaffBody)
	}
	if payload.ReviewedByID != nil {
		distinct := payload.AssignedToID == nil || *payload.ReviewedByID != *payload.AssignedToID
		if distinct {
			n.enqueue(ctx, event.EntityID, payload.ToStatus, *payload.ReviewedByID, domain.ChannelInApp, tpl.StaffTitle, tpl.StaffBody)
		}
	}
	return nil
}

func (n *NotificationService) enqueue(ctx context.Context, claimID string, toStatus domain.ClaimStatus, recipientID string, channel domain.NotificationChannel, title, body string) {
	msg := &domain.NotificationMessage{
		ID:          uuid.NewString(),
		ClaimID:     claimID,
		ToStatus:    toStatus,
		RecipientID: recipientID,
		Channel:     channel,
		Title:       title,
		Body:        body,
		EnqueuedAt:  time.Now(),
	}
	if err := n.queue.Enqueue(ctx, msg); err != nil {
		n.logger.Error("failed to enqueue notification",
			zap.String("claim_id", claimID),
			zap.String("recipient_id", recipientID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}
}
