package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// InventoryService manages battery models, serialized stock, and batch
// allocations to wholesalers.
type InventoryService struct {
	inventory   repository.InventoryRepository
	users       repository.UserRepository
	permissions PermissionChecker
	dispatcher  events.Dispatcher
}

// NewInventoryService constructs the service.
func NewInventoryService(inventory repository.InventoryRepository, users repository.UserRepository, permissions PermissionChecker, dispatcher events.Dispatcher) *InventoryService {
	return &InventoryService{inventory: inventory, users: users, permissions: permissions, dispatcher: dispatcher}
}

// ModelCreateInput describes a battery model registration.
type ModelCreateInput struct {
	Name           string
	SKU            string
	CapacityAh     int
	Voltage        int
	WarrantyMonths int
}

// CreateModel registers a battery product line.
func (s *InventoryService) CreateModel(ctx context.Context, actor *domain.Actor, input ModelCreateInput) (*domain.BatteryModel, error) {
	if err := s.require(ctx, actor, domain.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	if name == "" || sku == "" {
		return nil, util.NewValidationError("name and sku required", nil)
	}
	if input.WarrantyMonths <= 0 {
		return nil, util.NewValidationError("warranty term must be positive", nil)
	}
	model := &domain.BatteryModel{
		Name:           name,
		SKU:            sku,
		CapacityAh:     input.CapacityAh,
		Voltage:        input.Voltage,
		WarrantyMonths: input.WarrantyMonths,
		IsActive:       true,
	}
	if err := s.inventory.CreateModel(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// ListModels returns product lines.
func (s *InventoryService) ListModels(ctx context.Context, actor *domain.Actor, includeInactive bool) ([]domain.BatteryModel, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	return s.inventory.ListModels(ctx, includeInactive)
}

// RegisterSerials mints serialized units for a model.
func (s *InventoryService) RegisterSerials(ctx context.Context, actor *domain.Actor, modelID string, serials []string) ([]domain.SerialNumber, error) {
	if err := s.require(ctx, actor, domain.ActionCreate); err != nil {
		return nil, err
	}
	if len(serials) == 0 {
		return nil, util.NewValidationError("at least one serial required", nil)
	}
	model, err := s.inventory.GetModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	units := make([]domain.SerialNumber, 0, len(serials))
	seen := map[string]struct{}{}
	for _, raw := range serials {
		serial := strings.TrimSpace(raw)
		if serial == "" {
			return nil, util.NewValidationError("empty serial in batch", nil)
		}
		if _, dup := seen[serial]; dup {
			return nil, util.NewValidationError("duplicate serial in batch", map[string]any{"serial": serial})
		}
		seen[serial] = struct{}{}
		units = append(units, domain.SerialNumber{
			BatteryModelID: model.ID,
			Serial:         serial,
			Status:         domain.SerialAvailable,
		})
	}
	if err := s.inventory.CreateSerials(ctx, units); err != nil {
		return nil, err
	}
	return units, nil
}

// AllocationInput describes a batch hand-off to a wholesaler.
type AllocationInput struct {
	BatteryModelID string
	WholesalerID   string
	Quantity       int
	Notes          string
}

// Allocate reserves quantity available units for a wholesaler. The
// pick, status flips, and allocation record commit in one transaction,
// so concurrent allocations never hand out the same unit.
func (s *InventoryService) Allocate(ctx context.Context, actor *domain.Actor, input AllocationInput) (*domain.StockAllocation, []domain.SerialNumber, error) {
	if err := s.require(ctx, actor, domain.ActionUpdate); err != nil {
		return nil, nil, err
	}
	if input.Quantity <= 0 {
		return nil, nil, util.NewValidationError("quantity must be positive", nil)
	}
	wholesaler, err := s.users.GetByID(ctx, input.WholesalerID)
	if err != nil {
		return nil, nil, err
	}
	if wholesaler.Tier != domain.TierWholesaler || !wholesaler.IsActive {
		return nil, nil, util.NewValidationError("allocations go to active wholesaler accounts", nil)
	}

	actorID := actor.User.ID
	allocation := &domain.StockAllocation{
		BatteryModelID: input.BatteryModelID,
		WholesalerID:   input.WholesalerID,
		AllocatedByID:  &actorID,
		Quantity:       input.Quantity,
		Notes:          strings.TrimSpace(input.Notes),
	}
	picked, err := s.inventory.AllocateSerials(ctx, allocation)
	if err != nil {
		if err == repository.ErrInsufficientStock {
			return nil, nil, util.NewConflict("not enough available stock", map[string]any{
				"battery_model_id": input.BatteryModelID,
				"requested":        input.Quantity,
			})
		}
		return nil, nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventStockAllocated,
		EntityID: allocation.ID,
		Actor:    events.Actor{Kind: actor.Kind, UserID: &actorID},
		Payload: events.StockAllocatedPayload{
			BatteryModelID: allocation.BatteryModelID,
			WholesalerID:   allocation.WholesalerID,
			Quantity:       allocation.Quantity,
		},
	})
	return allocation, picked, nil
}

// MarkSold records a retail sale of an allocated unit to a consumer.
// Wholesalers may sell only units allocated to them.
func (s *InventoryService) MarkSold(ctx context.Context, actor *domain.Actor, serial, consumerID string) (*domain.SerialNumber, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	unit, err := s.inventory.GetSerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if actor.Kind == domain.ActorWholesaler {
		if unit.AllocatedToID == nil || *unit.AllocatedToID != actor.User.ID {
			return nil, util.NewPermissionDenied("unit is not allocated to this wholesaler")
		}
	} else if err := s.require(ctx, actor, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if unit.Status != domain.SerialAllocated {
		return nil, util.NewValidationError("only allocated units can be sold", map[string]any{"status": string(unit.Status)})
	}
	consumer, err := s.users.GetByID(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	if consumer.Tier != domain.TierConsumer {
		return nil, util.NewValidationError("units are sold to consumer accounts", nil)
	}
	if err := s.inventory.MarkSerialSold(ctx, unit.ID, consumerID); err != nil {
		return nil, err
	}
	unit.Status = domain.SerialSold
	unit.SoldToID = &consumerID
	now := time.Now()
	unit.SoldAt = &now
	return unit, nil
}

// StockLevel reports counts by status for a model.
func (s *InventoryService) StockLevel(ctx context.Context, actor *domain.Actor, modelID string) (map[domain.SerialStatus]int, error) {
	if err := s.require(ctx, actor, domain.ActionView); err != nil {
		return nil, err
	}
	levels := make(map[domain.SerialStatus]int, 3)
	for _, status := range []domain.SerialStatus{domain.SerialAvailable, domain.SerialAllocated, domain.SerialSold} {
		count, err := s.inventory.CountByStatus(ctx, modelID, status)
		if err != nil {
			return nil, err
		}
		levels[status] = count
	}
	return levels, nil
}

func (s *InventoryService) require(ctx context.Context, actor *domain.Actor, action domain.Action) error {
	if actor == nil || actor.User == nil {
		return util.NewUnauthorized("actor required")
	}
	allowed, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceInventory, action)
	if err != nil {
		return err
	}
	if !allowed {
		return util.NewPermissionDenied("actor cannot manage inventory")
	}
	return nil
}

func (s *InventoryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
