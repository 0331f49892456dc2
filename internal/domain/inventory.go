package domain

import "time"

// BatteryModel describes a manufactured battery product line.
type BatteryModel struct {
	ID             string
	Name           string
	SKU            string
	CapacityAh     int
	Voltage        int
	WarrantyMonths int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SerialStatus tracks where a serialized unit sits in the supply chain.
type SerialStatus string

const (
	SerialAvailable SerialStatus = "AVAILABLE"
	SerialAllocated SerialStatus = "ALLOCATED"
	SerialSold      SerialStatus = "SOLD"
)

// SerialNumber is one serialized battery unit.
type SerialNumber struct {
	ID             string
	BatteryModelID string
	Serial         string
	Status         SerialStatus
	AllocatedToID  *string
	AllocatedAt    *time.Time
	SoldToID       *string
	SoldAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StockAllocation records a batch hand-off of serials to a wholesaler.
type StockAllocation struct {
	ID             string
	BatteryModelID string
	WholesalerID   string
	AllocatedByID  *string
	Quantity       int
	Notes          string
	CreatedAt      time.Time
}
