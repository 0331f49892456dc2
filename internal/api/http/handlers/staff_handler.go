package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lithovolt/warranty-service/internal/api/dto"
	"github.com/lithovolt/warranty-service/internal/auth"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/internal/service"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// StaffHandler exposes staff directory management.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return util.NewValidationError("user_id required", nil)
	}
	var hireDate time.Time
	if req.HireDate != nil {
		hireDate = *req.HireDate
	}
	profile, err := h.staff.CreateStaff(c.UserContext(), actor, service.StaffCreateInput{
		UserID:           req.UserID,
		RoleID:           req.RoleID,
		SupervisorUserID: req.SupervisorUserID,
		HireDate:         hireDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStaffResponse(profile)})
}

// Update handles PATCH /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.StaffUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	profile, err := h.staff.UpdateStaff(c.UserContext(), actor, c.Params("id"), service.StaffUpdateInput{
		RoleID:           req.RoleID,
		SupervisorUserID: req.SupervisorUserID,
		ClearSupervisor:  req.ClearSupervisor,
		IsActive:         req.IsActive,
		Notes:            req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(profile)})
}

// Get handles GET /staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	profile, err := h.staff.GetStaff(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(profile)})
}

// List handles GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter := repository.StaffFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if roleID := c.Query("role_id"); roleID != "" {
		filter.RoleID = &roleID
	}
	if c.Query("active") != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}
	profiles, err := h.staff.ListStaff(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	out := make([]dto.StaffResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, dto.NewStaffResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}
