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

// RolesHandler exposes role and grant management.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// Create handles POST /roles.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.RoleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	role, err := h.roles.CreateRole(c.UserContext(), actor, domain.RoleName(req.Name), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// List handles GET /roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	roles, err := h.roles.ListRoles(c.UserContext(), actor, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, dto.NewRoleResponse(&roles[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// AddGrant handles POST /roles/:id/grants.
func (h *RolesHandler) AddGrant(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	grant, err := h.roles.AddGrant(c.UserContext(), actor, c.Params("id"), domain.Resource(req.Resource), domain.Action(req.Action), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.GrantResponse{
		ID:       grant.ID,
		Resource: string(grant.Resource),
		Action:   string(grant.Action),
	}})
}

// RemoveGrant handles DELETE /roles/grants/:grantId.
func (h *RolesHandler) RemoveGrant(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	if err := h.roles.RemoveGrant(c.UserContext(), actor, c.Params("grantId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
