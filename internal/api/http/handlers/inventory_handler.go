package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lithovolt/warranty-service/internal/api/dto"
	"github.com/lithovolt/warranty-service/internal/auth"
	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/service"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// InventoryHandler exposes battery model and stock operations.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// CreateModel handles POST /inventory/models.
func (h *InventoryHandler) CreateModel(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ModelCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	model, err := h.inventory.CreateModel(c.UserContext(), actor, service.ModelCreateInput{
		Name:           req.Name,
		SKU:            req.SKU,
		CapacityAh:     req.CapacityAh,
		Voltage:        req.Voltage,
		WarrantyMonths: req.WarrantyMonths,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewModelResponse(model)})
}

// ListModels handles GET /inventory/models.
func (h *InventoryHandler) ListModels(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	models, err := h.inventory.ListModels(c.UserContext(), actor, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	out := make([]dto.ModelResponse, 0, len(models))
	for i := range models {
		out = append(out, dto.NewModelResponse(&models[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// RegisterSerials handles POST /inventory/models/:id/serials.
func (h *InventoryHandler) RegisterSerials(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.SerialBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	units, err := h.inventory.RegisterSerials(c.UserContext(), actor, c.Params("id"), req.Serials)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSerialResponses(units)})
}

// Allocate handles POST /inventory/allocations.
func (h *InventoryHandler) Allocate(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.AllocationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	allocation, units, err := h.inventory.Allocate(c.UserContext(), actor, service.AllocationInput{
		BatteryModelID: req.BatteryModelID,
		WholesalerID:   req.WholesalerID,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"allocation_id": allocation.ID,
		"quantity":      allocation.Quantity,
		"serials":       dto.NewSerialResponses(units),
	}})
}

// MarkSold handles POST /inventory/sales.
func (h *InventoryHandler) MarkSold(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Serial == "" || req.ConsumerID == "" {
		return util.NewValidationError("serial and consumer_id required", nil)
	}
	unit, err := h.inventory.MarkSold(c.UserContext(), actor, req.Serial, req.ConsumerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSerialResponses([]domain.SerialNumber{*unit})[0]})
}

// StockLevel handles GET /inventory/models/:id/stock.
func (h *InventoryHandler) StockLevel(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	levels, err := h.inventory.StockLevel(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": levels})
}
