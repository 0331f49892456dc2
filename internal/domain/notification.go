package domain

import "time"

// NotificationChannel is the delivery lane for a queued notification.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelInApp NotificationChannel = "IN_APP"
)

// NotificationStatus tracks delivery outcomes in the log.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// NotificationMessage is the queue envelope emitted per recipient and
// channel when a claim changes status. Delivery is best-effort; the
// transition that produced it never waits on it.
type NotificationMessage struct {
	ID          string              `json:"id"`
	ClaimID     string              `json:"claim_id"`
	ToStatus    ClaimStatus         `json:"to_status"`
	RecipientID string              `json:"recipient_id"`
	Channel     NotificationChannel `json:"channel"`
	Title       string              `json:"title"`
	Body        string              `json:"body"`
	Attempts    int                 `json:"attempts"`
	EnqueuedAt  time.Time           `json:"enqueued_at"`
}

// NotificationLog is the persisted outcome of one delivery attempt chain.
type NotificationLog struct {
	ID           string
	RecipientID  string
	Channel      NotificationChannel
	Status       NotificationStatus
	Title        string
	Body         string
	EntityType   string
	EntityID     string
	ErrorMessage string
	CreatedAt    time.Time
}
