package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/internal/observability"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// PermissionChecker answers whether a resolved actor may perform an
// action on a resource. Satisfied by authz.Store.
type PermissionChecker interface {
	ActorHasPermission(ctx context.Context, actor *domain.Actor, resource domain.Resource, action domain.Action) (bool, error)
}

type transition struct {
	From domain.ClaimStatus
	To   domain.ClaimStatus
}

type requiredPermission struct {
	Resource domain.Resource
	Action   domain.Action
}

// allowedTransitions is the complete claim lifecycle. Pairs absent from
// this table, including self-loops, are rejected. RESOLVED is terminal.
var allowedTransitions = map[domain.ClaimStatus][]domain.ClaimStatus{
	domain.ClaimPending:     {domain.ClaimUnderReview},
	domain.ClaimUnderReview: {domain.ClaimApproved, domain.ClaimRejected},
	domain.ClaimApproved:    {domain.ClaimResolved},
	domain.ClaimRejected:    {domain.ClaimResolved},
	domain.ClaimResolved:    {},
}

// requiredActions maps each legal transition to the grant it demands.
var requiredActions = map[transition]requiredPermission{
	{domain.ClaimPending, domain.ClaimUnderReview}:  {domain.ResourceWarrantyClaims, domain.ActionAssign},
	{domain.ClaimUnderReview, domain.ClaimApproved}: {domain.ResourceWarrantyClaims, domain.ActionApprove},
	{domain.ClaimUnderReview, domain.ClaimRejected}: {domain.ResourceWarrantyClaims, domain.ActionApprove},
	{domain.ClaimApproved, domain.ClaimResolved}:    {domain.ResourceWarrantyClaims, domain.ActionApprove},
	{domain.ClaimRejected, domain.ClaimResolved}:    {domain.ResourceWarrantyClaims, domain.ActionApprove},
}

// CanTransitionTo reports whether the lifecycle permits moving a claim
// from one status to another.
func CanTransitionTo(from, to domain.ClaimStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClaimService drives the warranty claim lifecycle.
type ClaimService struct {
	claims      repository.ClaimRepository
	history     repository.ClaimHistoryRepository
	attachments repository.ClaimAttachmentRepository
	staff       repository.StaffRepository
	permissions PermissionChecker
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
}

// ClaimDependencies bundles collaborators for the claim service.
type ClaimDependencies struct {
	ClaimRepo      repository.ClaimRepository
	HistoryRepo    repository.ClaimHistoryRepository
	AttachmentRepo repository.ClaimAttachmentRepository
	StaffRepo      repository.StaffRepository
	Permissions    PermissionChecker
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	return &ClaimService{
		claims:      deps.ClaimRepo,
		history:     deps.HistoryRepo,
		attachments: deps.AttachmentRepo,
		staff:       deps.StaffRepo,
		permissions: deps.Permissions,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
	}
}

// TransitionInput carries the operator-supplied parts of a transition.
type TransitionInput struct {
	AssignedToID *string
	Notes        string
}

// Assign moves a pending claim under review and records the assignee.
func (s *ClaimService) Assign(ctx context.Context, actor *domain.Actor, claimID, assigneeUserID, notes string) (*domain.WarrantyClaim, error) {
	return s.UpdateStatus(ctx, actor, claimID, domain.ClaimUnderReview, TransitionInput{
		AssignedToID: &assigneeUserID,
		Notes:        notes,
	})
}

// Approve accepts a claim under review.
func (s *ClaimService) Approve(ctx context.Context, actor *domain.Actor, claimID, reviewNotes string) (*domain.WarrantyClaim, error) {
	return s.UpdateStatus(ctx, actor, claimID, domain.ClaimApproved, TransitionInput{Notes: reviewNotes})
}

// Reject declines a claim under review.
func (s *ClaimService) Reject(ctx context.Context, actor *domain.Actor, claimID, reviewNotes string) (*domain.WarrantyClaim, error) {
	return s.UpdateStatus(ctx, actor, claimID, domain.ClaimRejected, TransitionInput{Notes: reviewNotes})
}

// Resolve closes out an approved or rejected claim.
func (s *ClaimService) Resolve(ctx context.Context, actor *domain.Actor, claimID, notes string) (*domain.WarrantyClaim, error) {
	return s.UpdateStatus(ctx, actor, claimID, domain.ClaimResolved, TransitionInput{Notes: notes})
}

// UpdateStatus applies a single lifecycle transition. The status update
// and its ledger row commit atomically; the change event is published
// only after the commit.
func (s *ClaimService) UpdateStatus(ctx context.Context, actor *domain.Actor, claimID string, to domain.ClaimStatus, input TransitionInput) (*domain.WarrantyClaim, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	from := claim.Status
	if !CanTransitionTo(from, to) {
		return nil, util.NewInvalidTransition(string(from), string(to))
	}

	required := requiredActions[transition{from, to}]
	allowed, err := s.permissions.ActorHasPermission(ctx, actor, required.Resource, required.Action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if s.metrics != nil {
			s.metrics.RecordPermissionDenial()
		}
		return nil, util.NewPermissionDenied("actor lacks " + string(required.Action) + " on " + string(required.Resource))
	}

	switch to {
	case domain.ClaimUnderReview:
		if input.AssignedToID == nil {
			return nil, util.NewValidationError("assignee required", nil)
		}
		if err := s.ensureAssignable(ctx, *input.AssignedToID); err != nil {
			return nil, err
		}
		claim.AssignedToID = input.AssignedToID
	case domain.ClaimApproved, domain.ClaimRejected:
		reviewerID := actor.User.ID
		claim.ReviewedByID = &reviewerID
		claim.ReviewNotes = strings.TrimSpace(input.Notes)
	case domain.ClaimResolved:
		now := time.Now()
		claim.ResolutionDate = &now
	}
	claim.Status = to

	actorID := actor.User.ID
	entry := &domain.ClaimStatusHistory{
		ClaimID:     claim.ID,
		FromStatus:  from,
		ToStatus:    to,
		ChangedByID: &actorID,
		Notes:       strings.TrimSpace(input.Notes),
	}
	if err := s.claims.ApplyTransition(ctx, claim, from, entry); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, util.NewConflict("claim status changed concurrently", map[string]any{
				"claim_id":    claim.ID,
				"from_status": string(from),
			})
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(to))
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventClaimStatusChanged,
		EntityID: claim.ID,
		Actor:    events.Actor{Kind: actor.Kind, UserID: &actorID},
		Payload: events.ClaimStatusChangedPayload{
			FromStatus:   from,
			ToStatus:     to,
			ConsumerID:   claim.ConsumerID,
			AssignedToID: claim.AssignedToID,
			ReviewedByID: claim.ReviewedByID,
			Notes:        entry.Notes,
		},
	})
	return claim, nil
}

// GetClaim fetches one claim, enforcing ownership for consumers and the
// view grant for everyone else.
func (s *ClaimService) GetClaim(ctx context.Context, actor *domain.Actor, claimID string) (*domain.WarrantyClaim, []domain.ClaimAttachment, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureReadable(ctx, actor, claim); err != nil {
		return nil, nil, err
	}
	attachments, err := s.attachments.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, nil, err
	}
	return claim, attachments, nil
}

// ClaimListFilter describes claim listing filters.
type ClaimListFilter struct {
	Statuses []domain.ClaimStatus
	Limit    int
	Offset   int
}

// ListClaims returns claims visible to the actor. Consumers see their
// own, staff without the view grant see those assigned to them, and
// actors holding the view grant see everything.
func (s *ClaimService) ListClaims(ctx context.Context, actor *domain.Actor, filter ClaimListFilter) ([]domain.WarrantyClaim, error) {
	if actor == nil || actor.User == nil {
		return nil, util.NewUnauthorized("actor required")
	}
	repoFilter := repository.ClaimFilter{
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	switch actor.Kind {
	case domain.ActorConsumer:
		consumerID := actor.User.ID
		repoFilter.ConsumerID = &consumerID
	case domain.ActorWholesaler:
		return nil, util.NewPermissionDenied("wholesalers have no claim visibility")
	default:
		canView, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceWarrantyClaims, domain.ActionView)
		if err != nil {
			return nil, err
		}
		if !canView {
			assigneeID := actor.User.ID
			repoFilter.AssignedToID = &assigneeID
		}
	}
	return s.claims.ListWithFilter(ctx, repoFilter)
}

// ListHistory returns the status ledger for a claim, newest first.
func (s *ClaimService) ListHistory(ctx context.Context, actor *domain.Actor, claimID string) ([]domain.ClaimStatusHistory, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureReadable(ctx, actor, claim); err != nil {
		return nil, err
	}
	return s.history.ListByClaim(ctx, claimID)
}

func (s *ClaimService) ensureReadable(ctx context.Context, actor *domain.Actor, claim *domain.WarrantyClaim) error {
	if actor == nil || actor.User == nil {
		return util.NewUnauthorized("actor required")
	}
	if actor.Kind == domain.ActorConsumer {
		if claim.ConsumerID != actor.User.ID {
			return util.NewPermissionDenied("claim belongs to another consumer")
		}
		return nil
	}
	if claim.AssignedToID != nil && *claim.AssignedToID == actor.User.ID {
		return nil
	}
	canView, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceWarrantyClaims, domain.ActionView)
	if err != nil {
		return err
	}
	if !canView {
		return util.NewPermissionDenied("actor cannot view warranty claims")
	}
	return nil
}

func (s *ClaimService) ensureAssignable(ctx context.Context, assigneeUserID string) error {
	profile, err := s.staff.GetByUserID(ctx, assigneeUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewValidationError("assignee must be a staff member", map[string]any{"user_id": assigneeUserID})
	}
	if err != nil {
		return err
	}
	if !profile.IsActive {
		return util.NewValidationError("assignee staff profile is inactive", map[string]any{"user_id": assigneeUserID})
	}
	return nil
}

func (s *ClaimService) publishEvent(ctx context.Context, event events.Event) {
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
