package events

import (
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventClaimCreated       EventType = "claim_created"
	EventClaimStatusChanged EventType = "claim_status_changed"
	EventStockAllocated     EventType = "stock_allocated"
	EventWarrantyIssued     EventType = "warranty_issued"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind   domain.ActorKind `json:"kind"`
	UserID *string          `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ClaimCreatedPayload payload.
type ClaimCreatedPayload struct {
	WarrantyID  string `json:"warranty_id"`
	ConsumerID  string `json:"consumer_id"`
	Description string `json:"description"`
}

// ClaimStatusChangedPayload is emitted once per accepted transition,
// after the status and history row have committed.
type ClaimStatusChangedPayload struct {
	FromStatus   domain.ClaimStatus `json:"from_status"`
	ToStatus     domain.ClaimStatus `json:"to_status"`
	ConsumerID   string             `json:"consumer_id"`
	AssignedToID *string            `json:"assigned_to_id,omitempty"`
	ReviewedByID *string            `json:"reviewed_by_id,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// StockAllocatedPayload payload.
type StockAllocatedPayload struct {
	BatteryModelID string `json:"battery_model_id"`
	WholesalerID   string `json:"wholesaler_id"`
	Quantity       int    `json:"quantity"`
}

// WarrantyIssuedPayload payload.
type WarrantyIssuedPayload struct {
	WarrantyNumber string  `json:"warranty_number"`
	SerialNumberID string  `json:"serial_number_id"`
	ConsumerID     *string `json:"consumer_id,omitempty"`
}
