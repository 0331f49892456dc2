package domain

import "time"

// WarrantyStatus enumerates warranty record states.
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "ACTIVE"
	WarrantyExpired WarrantyStatus = "EXPIRED"
	WarrantyVoid    WarrantyStatus = "VOID"
)

// Warranty covers a single sold serial number for a consumer.
type Warranty struct {
	ID             string
	WarrantyNumber string
	SerialNumberID string
	ConsumerID     *string
	IssuedByID     *string
	IssuedAt       time.Time
	StartDate      time.Time
	EndDate        *time.Time
	Status         WarrantyStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired reports whether the coverage window has passed.
func (w *Warranty) IsExpired(now time.Time) bool {
	return w.EndDate != nil && now.After(*w.EndDate)
}
