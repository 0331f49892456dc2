package dto

import (
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// WarrantyIssueRequest payload for registering coverage.
type WarrantyIssueRequest struct {
	Serial     string     `json:"serial"`
	ConsumerID string     `json:"consumer_id"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	Months     int        `json:"months,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// WarrantyResponse is the API view of a warranty.
type WarrantyResponse struct {
	ID             string     `json:"id"`
	WarrantyNumber string     `json:"warranty_number"`
	SerialNumberID string     `json:"serial_number_id"`
	ConsumerID     *string    `json:"consumer_id,omitempty"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
}

// NewWarrantyResponse maps the domain model.
func NewWarrantyResponse(w *domain.Warranty) WarrantyResponse {
	return WarrantyResponse{
		ID:             w.ID,
		WarrantyNumber: w.WarrantyNumber,
		SerialNumberID: w.SerialNumberID,
		ConsumerID:     w.ConsumerID,
		StartDate:      w.StartDate,
		EndDate:        w.EndDate,
		Status:         string(w.Status),
		Notes:          w.Notes,
	}
}
