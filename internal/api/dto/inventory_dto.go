package dto

import (
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ModelCreateRequest payload for registering a battery model.
type ModelCreateRequest struct {
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	CapacityAh     int    `json:"capacity_ah"`
	Voltage        int    `json:"voltage"`
	WarrantyMonths int    `json:"warranty_months"`
}

// SerialBatchRequest payload for minting serial numbers.
type SerialBatchRequest struct {
	Serials []string `json:"serials"`
}

// AllocationRequest payload for a stock hand-off.
type AllocationRequest struct {
	BatteryModelID string `json:"battery_model_id"`
	WholesalerID   string `json:"wholesaler_id"`
	Quantity       int    `json:"quantity"`
	Notes          string `json:"notes,omitempty"`
}

// SaleRequest payload for a retail sale.
type SaleRequest struct {
	Serial     string `json:"serial"`
	ConsumerID string `json:"consumer_id"`
}

// ModelResponse is the API view of a battery model.
type ModelResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	CapacityAh     int    `json:"capacity_ah"`
	Voltage        int    `json:"voltage"`
	WarrantyMonths int    `json:"warranty_months"`
	IsActive       bool   `json:"is_active"`
}

// SerialResponse is the API view of a serialized unit.
type SerialResponse struct {
	ID            string     `json:"id"`
	Serial        string     `json:"serial"`
	Status        string     `json:"status"`
	AllocatedToID *string    `json:"allocated_to_id,omitempty"`
	SoldToID      *string    `json:"sold_to_id,omitempty"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
}

// NewModelResponse maps the domain model.
func NewModelResponse(m *domain.BatteryModel) ModelResponse {
	return ModelResponse{
		ID:             m.ID,
		Name:           m.Name,
		SKU:            m.SKU,
		CapacityAh:     m.CapacityAh,
		Voltage:        m.Voltage,
		WarrantyMonths: m.WarrantyMonths,
		IsActive:       m.IsActive,
	}
}

// NewSerialResponses maps serialized units.
func NewSerialResponses(units []domain.SerialNumber) []SerialResponse {
	out := make([]SerialResponse, 0, len(units))
	for _, unit := range units {
		out = append(out, SerialResponse{
			ID:            unit.ID,
			Serial:        unit.Serial,
			Status:        string(unit.Status),
			AllocatedToID: unit.AllocatedToID,
			SoldToID:      unit.SoldToID,
			SoldAt:        unit.SoldAt,
		})
	}
	return out
}
