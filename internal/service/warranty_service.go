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

// WarrantyService issues warranties for sold units and accepts claims
// filed against them.
type WarrantyService struct {
	warranties  repository.WarrantyRepository
	inventory   repository.InventoryRepository
	claims      repository.ClaimRepository
	attachments repository.ClaimAttachmentRepository
	users       repository.UserRepository
	permissions PermissionChecker
	dispatcher  events.Dispatcher
}

// WarrantyDependencies bundles collaborators for the warranty service.
type WarrantyDependencies struct {
	WarrantyRepo   repository.WarrantyRepository
	InventoryRepo  repository.InventoryRepository
	ClaimRepo      repository.ClaimRepository
	AttachmentRepo repository.ClaimAttachmentRepository
	UserRepo       repository.UserRepository
	Permissions    PermissionChecker
	Dispatcher     events.Dispatcher
}

// NewWarrantyService constructs the service.
func NewWarrantyService(deps WarrantyDependencies) *WarrantyService {
	return &WarrantyService{
		warranties:  deps.WarrantyRepo,
		inventory:   deps.InventoryRepo,
		claims:      deps.ClaimRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
		permissions: deps.Permissions,
		dispatcher:  deps.Dispatcher,
	}
}

// WarrantyIssueInput describes a warranty registration.
type WarrantyIssueInput struct {
	Serial     string
	ConsumerID string
	StartDate  time.Time
	Months     int
	Notes      string
}

// IssueWarranty registers coverage for a sold serial number. The
// coverage window defaults to the battery model's warranty term.
func (s *WarrantyService) IssueWarranty(ctx context.Context, actor *domain.Actor, input WarrantyIssueInput) (*domain.Warranty, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	allowed, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceWarrantyClaims, domain.ActionAssign)
	if err != nil {
		return nil, err
	}
	if !allowed && actor.Kind != domain.ActorWholesaler {
		return nil, util.NewPermissionDenied("actor cannot issue warranties")
	}

	serial, err := s.inventory.GetSerial(ctx, input.Serial)
	if err != nil {
		return nil, err
	}
	if serial.Status != domain.SerialSold {
		return nil, util.NewValidationError("warranty requires a sold unit", map[string]any{
			"serial": input.Serial,
			"status": string(serial.Status),
		})
	}
	consumer, err := s.users.GetByID(ctx, input.ConsumerID)
	if err != nil {
		return nil, err
	}
	if consumer.Tier != domain.TierConsumer {
		return nil, util.NewValidationError("warranties are held by consumer accounts", nil)
	}

	start := input.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	months := input.Months
	if months <= 0 {
		model, err := s.inventory.GetModelByID(ctx, serial.BatteryModelID)
		if err != nil {
			return nil, err
		}
		months = model.WarrantyMonths
	}
	end := start.AddDate(0, months, 0)

	issuerID := actor.User.ID
	warranty := &domain.Warranty{
		WarrantyNumber: generateWarrantyNumber(),
		SerialNumberID: serial.ID,
		ConsumerID:     &input.ConsumerID,
		IssuedByID:     &issuerID,
		IssuedAt:       time.Now(),
		StartDate:      start,
		EndDate:        &end,
		Status:         domain.WarrantyActive,
		Notes:          strings.TrimSpace(input.Notes),
	}
	if err := s.warranties.Create(ctx, warranty); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventWarrantyIssued,
		EntityID: warranty.ID,
		Actor:    events.Actor{Kind: actor.Kind, UserID: &issuerID},
		Payload: events.WarrantyIssuedPayload{
			WarrantyNumber: warranty.WarrantyNumber,
			SerialNumberID: warranty.SerialNumberID,
			ConsumerID:     warranty.ConsumerID,
		},
	})
	return warranty, nil
}

// VerifyBySerial looks up coverage for a serial number. This endpoint
// backs the public warranty checker, so it returns the warranty without
// an ownership gate.
func (s *WarrantyService) VerifyBySerial(ctx context.Context, serial string) (*domain.Warranty, error) {
	warranty, err := s.warranties.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if warranty.Status == domain.WarrantyActive && warranty.IsExpired(time.Now()) {
		warranty.Status = domain.WarrantyExpired
		if err := s.warranties.Update(ctx, warranty); err != nil {
			return nil, err
		}
	}
	return warranty, nil
}

// GetWarranty fetches one warranty, enforcing ownership for consumers.
func (s *WarrantyService) GetWarranty(ctx context.Context, actor *domain.Actor, warrantyID string) (*domain.Warranty, error) {
	warranty, err := s.warranties.GetByID(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReadable(ctx, actor, warranty); err != nil {
		return nil, err
	}
	return warranty, nil
}

// ListWarranties returns warranties visible to the actor.
func (s *WarrantyService) ListWarranties(ctx context.Context, actor *domain.Actor, limit, offset int) ([]domain.Warranty, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	filter := repository.WarrantyFilter{Limit: limit, Offset: offset}
	if actor.Kind == domain.ActorConsumer {
		consumerID := actor.User.ID
		filter.ConsumerID = &consumerID
	}
	return s.warranties.ListWithFilter(ctx, filter)
}

// ClaimAttachmentInput defines metadata for a file supplied when filing.
type ClaimAttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// ClaimFileInput describes a consumer claim filing.
type ClaimFileInput struct {
	WarrantyID  string
	Description string
	Attachments []ClaimAttachmentInput
}

// FileClaim opens a PENDING claim against an active warranty. Only the
// warranty holder may file, and attachments are accepted only here.
func (s *WarrantyService) FileClaim(ctx context.Context, actor *domain.Actor, input ClaimFileInput) (*domain.WarrantyClaim, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	if actor.Kind != domain.ActorConsumer {
		return nil, util.NewPermissionDenied("only consumers file warranty claims")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, util.NewValidationError("description required", nil)
	}

	warranty, err := s.warranties.GetByID(ctx, input.WarrantyID)
	if err != nil {
		return nil, err
	}
	if warranty.ConsumerID == nil || *warranty.ConsumerID != actor.User.ID {
		return nil, util.NewPermissionDenied("warranty belongs to another consumer")
	}
	if warranty.Status != domain.WarrantyActive {
		return nil, util.NewValidationError("warranty is not active", map[string]any{"status": string(warranty.Status)})
	}
	if warranty.IsExpired(time.Now()) {
		return nil, util.NewValidationError("warranty has expired", map[string]any{"end_date": warranty.EndDate})
	}

	claim := &domain.WarrantyClaim{
		WarrantyID:  warranty.ID,
		ConsumerID:  actor.User.ID,
		Description: description,
		Status:      domain.ClaimPending,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, err
	}
	for _, att := range input.Attachments {
		record := &domain.ClaimAttachment{
			ClaimID:    claim.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, err
		}
	}

	consumerID := actor.User.ID
	s.publishEvent(ctx, events.Event{
		Type:     events.EventClaimCreated,
		EntityID: claim.ID,
		Actor:    events.Actor{Kind: actor.Kind, UserID: &consumerID},
		Payload: events.ClaimCreatedPayload{
			WarrantyID:  claim.WarrantyID,
			ConsumerID:  claim.ConsumerID,
			Description: stringPreview(claim.Description, 120),
		},
	})
	return claim, nil
}

func (s *WarrantyService) ensureReadable(ctx context.Context, actor *domain.Actor, warranty *domain.Warranty) error {
	if actor == nil || actor.User == nil {
		return util.NewUnauthorized("actor required")
	}
	if actor.Kind == domain.ActorConsumer {
		if warranty.ConsumerID == nil || *warranty.ConsumerID != actor.User.ID {
			return util.NewPermissionDenied("warranty belongs to another consumer")
		}
		return nil
	}
	if actor.Kind == domain.ActorWholesaler {
		return nil
	}
	canView, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceWarrantyClaims, domain.ActionView)
	if err != nil {
		return err
	}
	if !canView {
		return util.NewPermissionDenied("actor cannot view warranties")
	}
	return nil
}

func (s *WarrantyService) publishEvent(ctx context.Context, event events.Event) {
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

func generateWarrantyNumber() string {
	return "WRN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func stringPreview(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
