package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lithovolt/warranty-service/internal/api/dto"
	"github.com/lithovolt/warranty-service/internal/auth"
	"github.com/lithovolt/warranty-service/internal/service"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// WarrantiesHandler exposes warranty registration and lookup.
type WarrantiesHandler struct {
	warranties *service.WarrantyService
}

// NewWarrantiesHandler constructs handler.
func NewWarrantiesHandler(warranties *service.WarrantyService) *WarrantiesHandler {
	return &WarrantiesHandler{warranties: warranties}
}

// Issue handles POST /warranties.
func (h *WarrantiesHandler) Issue(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.WarrantyIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Serial == "" || req.ConsumerID == "" {
		return util.NewValidationError("serial and consumer_id required", nil)
	}
	var start time.Time
	if req.StartDate != nil {
		start = *req.StartDate
	}
	warranty, err := h.warranties.IssueWarranty(c.UserContext(), actor, service.WarrantyIssueInput{
		Serial:     req.Serial,
		ConsumerID: req.ConsumerID,
		StartDate:  start,
		Months:     req.Months,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewWarrantyResponse(warranty)})
}

// List handles GET /warranties.
func (h *WarrantiesHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	warranties, err := h.warranties.ListWarranties(c.UserContext(), actor, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]dto.WarrantyResponse, 0, len(warranties))
	for i := range warranties {
		out = append(out, dto.NewWarrantyResponse(&warranties[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /warranties/:id.
func (h *WarrantiesHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	warranty, err := h.warranties.GetWarranty(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWarrantyResponse(warranty)})
}

// Verify handles GET /warranties/verify/:serial. Public endpoint.
func (h *WarrantiesHandler) Verify(c *fiber.Ctx) error {
	warranty, err := h.warranties.VerifyBySerial(c.UserContext(), c.Params("serial"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"warranty_number": warranty.WarrantyNumber,
		"status":          string(warranty.Status),
		"start_date":      warranty.StartDate,
		"end_date":        warranty.EndDate,
	}})
}
