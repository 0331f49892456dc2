package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lithovolt/warranty-service/internal/config"
	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/internal/queue"
)

func notificationFixture(t *testing.T) (events.Dispatcher, queue.NotificationQueue) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	q := queue.NewMemoryQueue(32)
	svc := NewNotificationService(dispatcher, q, zap.NewNop(), config.NotificationConfig{
		QueueKey:    "warranty:notifications",
		MaxAttempts: 3,
		EmailFrom:   "support@lithovolt.example",
	})
	svc.RegisterHandlers()
	return dispatcher, q
}

func drainQueue(t *testing.T, q queue.NotificationQueue) []*domain.NotificationMessage {
	t.Helper()
	var out []*domain.NotificationMessage
	for {
		msg, err := q.Dequeue(context.Background(), 10*time.Millisecond)
		if err == queue.ErrEmpty {
			return out
		}
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		out = append(out, msg)
	}
}

func publishStatusChange(t *testing.T, d events.Dispatcher, payload events.ClaimStatusChangedPayload) {
	t.Helper()
	err := d.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventClaimStatusChanged,
		EntityID:  "claim-1",
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func countByRecipient(msgs []*domain.NotificationMessage) map[string]map[domain.NotificationChannel]int {
	out := map[string]map[domain.NotificationChannel]int{}
	for _, msg := range msgs {
		if out[msg.RecipientID] == nil {
			out[msg.RecipientID] = map[domain.NotificationChannel]int{}
		}
		out[msg.RecipientID][msg.Channel]++
	}
	return out
}

func TestFanOutAssignNotifiesConsumerAndAssignee(t *testing.T) {
	dispatcher, q := notificationFixture(t)
	assignee := "support-1"
	publishStatusChange(t, dispatcher, events.ClaimStatusChangedPayload{
		FromStatus:   domain.ClaimPending,
		ToStatus:     domain.ClaimUnderReview,
		ConsumerID:   "consumer-1",
		AssignedToID: &assignee,
	})

	msgs := drainQueue(t, q)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	counts := countByRecipient(msgs)
	if counts["consumer-1"][domain.ChannelEmail] != 1 || counts["consumer-1"][domain.ChannelInApp] != 1 {
		t.Fatalf("consumer channels = %v", counts["consumer-1"])
	}
	if counts["support-1"][domain.ChannelInApp] != 1 {
		t.Fatalf("assignee channels = %v", counts["support-1"])
	}
	for _, msg := range msgs {
		if msg.RecipientID == "consumer-1" && msg.Title != "Claim Under Review" {
			t.Fatalf("consumer title = %q", msg.Title)
		}
		if msg.RecipientID == "support-1" && msg.Title != "New Claim for Review" {
			t.Fatalf("assignee title = %q", msg.Title)
		}
	}
}

func TestFanOutDistinctReviewerNotified(t *testing.T) {
	dispatcher, q := notificationFixture(t)
	assignee := "support-1"
	reviewer := "manager-1"
	publishStatusChange(t, dispatcher, events.ClaimStatusChangedPayload{
		FromStatus:   domain.ClaimUnderReview,
		ToStatus:     domain.ClaimApproved,
		ConsumerID:   "consumer-1",
		AssignedToID: &assignee,
		ReviewedByID: &reviewer,
	})

	msgs := drainQueue(t, q)
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(msgs))
	}
	counts := countByRecipient(msgs)
	if counts["manager-1"][domain.ChannelInApp] != 1 {
		t.Fatalf("reviewer channels = %v", counts["manager-1"])
	}
}

func TestFanOutReviewerSameAsAssigneeNotDuplicated(t *testing.T) {
	dispatcher, q := notificationFixture(t)
	staff := "support-1"
	publishStatusChange(t, dispatcher, events.ClaimStatusChangedPayload{
		FromStatus:   domain.ClaimUnderReview,
		ToStatus:     domain.ClaimRejected,
		ConsumerID:   "consumer-1",
		AssignedToID: &staff,
		ReviewedByID: &staff,
		Notes:        "physical damage",
	})

	msgs := drainQueue(t, q)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	counts := countByRecipient(msgs)
	if counts["support-1"][domain.ChannelInApp] != 1 {
		t.Fatalf("staff notified %d times", counts["support-1"][domain.ChannelInApp])
	}
	for _, msg := range msgs {
		if msg.RecipientID == "consumer-1" && msg.Channel == domain.ChannelEmail {
			want := "Your warranty claim claim-1 has been rejected. Reason: physical damage"
			if msg.Body != want {
				t.Fatalf("body = %q, want %q", msg.Body, want)
			}
		}
	}
}

func TestFanOutResolvedWithoutStaff(t *testing.T) {
	dispatcher, q := notificationFixture(t)
	publishStatusChange(t, dispatcher, events.ClaimStatusChangedPayload{
		FromStatus: domain.ClaimApproved,
		ToStatus:   domain.ClaimResolved,
		ConsumerID: "consumer-1",
	})

	msgs := drainQueue(t, q)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want consumer pair only", len(msgs))
	}
	for _, msg := range msgs {
		if msg.RecipientID != "consumer-1" {
			t.Fatalf("unexpected recipient %s", msg.RecipientID)
		}
		if msg.Title != "Claim Resolved" {
			t.Fatalf("title = %q", msg.Title)
		}
	}
}
