package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lithovolt/warranty-service/internal/api/dto"
	"github.com/lithovolt/warranty-service/internal/auth"
	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/service"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// ClaimsHandler exposes the warranty claim lifecycle.
type ClaimsHandler struct {
	claims     *service.ClaimService
	warranties *service.WarrantyService
}

// NewClaimsHandler constructs handler.
func NewClaimsHandler(claims *service.ClaimService, warranties *service.WarrantyService) *ClaimsHandler {
	return &ClaimsHandler{claims: claims, warranties: warranties}
}

// File handles POST /claims.
func (h *ClaimsHandler) File(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ClaimFileRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	input := service.ClaimFileInput{
		WarrantyID:  req.WarrantyID,
		Description: req.Description,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, service.ClaimAttachmentInput{
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		})
	}
	claim, err := h.warranties.FileClaim(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}

// List handles GET /claims.
func (h *ClaimsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	filter := service.ClaimListFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.ClaimStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	claims, err := h.claims.ListClaims(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	out := make([]dto.ClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, dto.NewClaimResponse(&claims[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /claims/:id.
func (h *ClaimsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	claim, attachments, err := h.claims.GetClaim(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"claim":       dto.NewClaimResponse(claim),
		"attachments": dto.NewClaimAttachmentResponses(attachments),
	}})
}

// History handles GET /claims/:id/history.
func (h *ClaimsHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	rows, err := h.claims.ListHistory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimHistoryResponses(rows)})
}

// Assign handles POST /claims/:id/assign.
func (h *ClaimsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ClaimAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return util.NewValidationError("assignee_id required", nil)
	}
	claim, err := h.claims.Assign(c.UserContext(), actor, c.Params("id"), req.AssigneeID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}

// Approve handles POST /claims/:id/approve.
func (h *ClaimsHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.claims.Approve)
}

// Reject handles POST /claims/:id/reject.
func (h *ClaimsHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.claims.Reject)
}

// Resolve handles POST /claims/:id/resolve.
func (h *ClaimsHandler) Resolve(c *fiber.Ctx) error {
	return h.review(c, h.claims.Resolve)
}

func (h *ClaimsHandler) review(c *fiber.Ctx, op func(ctx context.Context, actor *domain.Actor, claimID, notes string) (*domain.WarrantyClaim, error)) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ClaimReviewRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return util.NewValidationError("invalid payload", nil)
	}
	claim, err := op(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewClaimResponse(claim)})
}
