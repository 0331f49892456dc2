package service

import (
	"context"
	"sync"
	"testing"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/events"
	"github.com/lithovolt/warranty-service/pkg/util"
)

func newClaimFixture(perms PermissionChecker) (*ClaimService, *fakeClaimRepo, *fakeStaffRepo) {
	claims := newFakeClaimRepo()
	staff := newFakeStaffRepo()
	svc := NewClaimService(ClaimDependencies{
		ClaimRepo:      claims,
		HistoryRepo:    &fakeHistoryRepo{claims: claims},
		AttachmentRepo: newFakeAttachmentRepo(),
		StaffRepo:      staff,
		Permissions:    perms,
		Dispatcher:     events.NewInMemoryDispatcher(),
	})
	return svc, claims, staff
}

func seedClaim(t *testing.T, claims *fakeClaimRepo, status domain.ClaimStatus, consumerID string) *domain.WarrantyClaim {
	t.Helper()
	claim := &domain.WarrantyClaim{
		WarrantyID:  "warranty-1",
		ConsumerID:  consumerID,
		Description: "cell degradation after two months",
		Status:      status,
	}
	if err := claims.Create(context.Background(), claim); err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	return claim
}

func seedStaff(t *testing.T, staff *fakeStaffRepo, userID string) {
	t.Helper()
	roleID := "role-support"
	if err := staff.Create(context.Background(), &domain.StaffUser{
		UserID:   userID,
		RoleID:   &roleID,
		IsActive: true,
	}); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to domain.ClaimStatus
		want     bool
	}{
		{domain.ClaimPending, domain.ClaimUnderReview, true},
		{domain.ClaimUnderReview, domain.ClaimApproved, true},
		{domain.ClaimUnderReview, domain.ClaimRejected, true},
		{domain.ClaimApproved, domain.ClaimResolved, true},
		{domain.ClaimRejected, domain.ClaimResolved, true},
		{domain.ClaimPending, domain.ClaimApproved, false},
		{domain.ClaimPending, domain.ClaimResolved, false},
		{domain.ClaimApproved, domain.ClaimRejected, false},
		{domain.ClaimRejected, domain.ClaimApproved, false},
		{domain.ClaimResolved, domain.ClaimPending, false},
		{domain.ClaimResolved, domain.ClaimUnderReview, false},
		{domain.ClaimResolved, domain.ClaimResolved, false},
		{domain.ClaimPending, domain.ClaimPending, false},
	}
	for _, tc := range cases {
		if got := CanTransitionTo(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	svc, claims, _ := newClaimFixture(allowAll)
	claim := seedClaim(t, claims, domain.ClaimPending, "consumer-1")

	_, err := svc.Approve(context.Background(), adminActor("admin-1"), claim.ID, "looks fine")
	if !util.HasCode(err, util.CodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestUpdateStatusTerminalResolved(t *testing.T) {
	svc, claims, staff := newClaimFixture(allowAll)
	claim := seedClaim(t, claims, domain.ClaimResolved, "consumer-1")
	seedStaff(t, staff, "reviewer-1")

	_, err := svc.Assign(context.Background(), adminActor("admin-1"), claim.ID, "reviewer-1", "")
	if !util.HasCode(err, util.CodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestAssignRequiresAssignGrant(t *testing.T) {
	perms := grantsOnly([2]string{"WARRANTY_CLAIMS", "APPROVE"})
	svc, claims, staff := newClaimFixture(perms)
	claim := seedClaim(t, claims, domain.ClaimPending, "consumer-1")
	seedStaff(t, staff, "reviewer-1")

	_, err := svc.Assign(context.Background(), staffActor("staff-1", "role-support"), claim.ID, "reviewer-1", "")
	if !util.HasCode(err, util.CodePermissionDenied) {
		t.Fatalf("err = %v, want PERMISSION_DENIED", err)
	}

	// the same actor may still approve once the claim is under review
	reviewClaim := seedClaim(t, claims, domain.ClaimUnderReview, "consumer-1")
	if _, err := svc.Approve(context.Background(), staffActor("staff-1", "role-support"), reviewClaim.ID, "covered defect"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
}

func TestAssignValidatesAssignee(t *testing.T) {
	svc, claims, _ := newClaimFixture(allowAll)
	claim := seedClaim(t, claims, domain.ClaimPending, "consumer-1")

	_, err := svc.Assign(context.Background(), adminActor("admin-1"), claim.ID, "nobody", "")
	if !util.HasCode(err, util.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestApproveRecordsReviewer(t *testing.T) {
	svc, claims, _ := newClaimFixture(allowAll)
	claim := seedClaim(t, claims, domain.ClaimUnderReview, "consumer-1")

	updated, err := svc.Approve(context.Background(), adminActor("reviewer-9"), claim.ID, "valid manufacturing defect")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if updated.Status != domain.ClaimApproved {
		t.Fatalf("status = %s, want APPROVED", updated.Status)
	}
	if updated.ReviewedByID == nil || *updated.ReviewedByID != "reviewer-9" {
		t.Fatalf("reviewer not recorded: %v", updated.ReviewedByID)
	}
	if updated.ReviewNotes != "valid manufacturing defect" {
		t.Fatalf("review notes = %q", updated.ReviewNotes)
	}
	if updated.ResolutionDate != nil {
		t.Fatalf("resolution date stamped before RESOLVED")
	}
}

func TestConcurrentApprovalsExactlyOneWins(t *testing.T) {
	svc, claims, _ := newClaimFixture(allowAll)
	claim := seedClaim(t, claims, domain.ClaimUnderReview, "consumer-1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(context.Background(), adminActor("reviewer-1"), claim.ID, "ok")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case util.HasCode(err, util.CodeConflict) || util.HasCode(err, util.CodeInvalidTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("successes = %d, conflicts = %d, want 1 and 1", successes, conflicts)
	}

	stored, err := claims.GetByID(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.ClaimApproved {
		t.Fatalf("status = %s, want APPROVED", stored.Status)
	}
	history, err := (&fakeHistoryRepo{claims: claims}).ListByClaim(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("ListByClaim: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
}

func TestApprovalPathEndToEnd(t *testing.T) {
	svc, claims, staff := newClaimFixture(allowAll)
	seedStaff(t, staff, "support-1")
	claim := seedClaim(t, claims, domain.ClaimPending, "consumer-1")
	ctx := context.Background()
	manager := adminActor("manager-1")

	if _, err := svc.Assign(ctx, manager, claim.ID, "support-1", "routing to support"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.Approve(ctx, manager, claim.ID, "defect confirmed"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	resolved, err := svc.Resolve(ctx, manager, claim.ID, "replacement shipped")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if resolved.Status != domain.ClaimResolved {
		t.Fatalf("status = %s, want RESOLVED", resolved.Status)
	}
	if resolved.ResolutionDate == nil {
		t.Fatalf("resolution date missing")
	}
	if resolved.AssignedToID == nil || *resolved.AssignedToID != "support-1" {
		t.Fatalf("assignee lost across transitions: %v", resolved.AssignedToID)
	}

	history, err := svc.ListHistory(ctx, manager, claim.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history rows = %d, want 3", len(history))
	}
	// newest first
	expected := []domain.ClaimStatus{domain.ClaimResolved, domain.ClaimApproved, domain.ClaimUnderReview}
	for i, want := range expected {
		if history[i].ToStatus != want {
			t.Fatalf("history[%d].ToStatus = %s, want %s", i, history[i].ToStatus, want)
		}
	}
	if history[0].FromStatus != domain.ClaimApproved {
		t.Fatalf("resolve recorded from %s, want APPROVED", history[0].FromStatus)
	}
}

func TestRejectionPathEndToEnd(t *testing.T) {
	svc, claims, staff := newClaimFixture(allowAll)
	seedStaff(t, staff, "support-1")
	claim := seedClaim(t, claims, domain.ClaimPending, "consumer-1")
	ctx := context.Background()
	manager := adminActor("manager-1")

	if _, err := svc.Assign(ctx, manager, claim.ID, "support-1", ""); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	rejected, err := svc.Reject(ctx, manager, claim.ID, "damage not covered")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.ReviewNotes != "damage not covered" {
		t.Fatalf("review notes = %q", rejected.ReviewNotes)
	}
	resolved, err := svc.Resolve(ctx, manager, claim.ID, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != domain.ClaimResolved || resolved.ResolutionDate == nil {
		t.Fatalf("claim not closed out: status=%s date=%v", resolved.Status, resolved.ResolutionDate)
	}
}

func TestConsumerVisibility(t *testing.T) {
	svc, claims, _ := newClaimFixture(denyAll)
	mine := seedClaim(t, claims, domain.ClaimPending, "consumer-1")
	seedClaim(t, claims, domain.ClaimPending, "consumer-2")

	ctx := context.Background()
	listed, err := svc.ListClaims(ctx, consumerActor("consumer-1"), ClaimListFilter{})
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != mine.ID {
		t.Fatalf("consumer sees %d claims, want own only", len(listed))
	}

	if _, _, err := svc.GetClaim(ctx, consumerActor("consumer-2"), mine.ID); !util.HasCode(err, util.CodePermissionDenied) {
		t.Fatalf("foreign claim read = %v, want PERMISSION_DENIED", err)
	}
}

func TestStatusChangeEventPublishedAfterCommit(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	claims := newFakeClaimRepo()
	staff := newFakeStaffRepo()
	svc := NewClaimService(ClaimDependencies{
		ClaimRepo:      claims,
		HistoryRepo:    &fakeHistoryRepo{claims: claims},
		AttachmentRepo: newFakeAttachmentRepo(),
		StaffRepo:      staff,
		Permissions:    allowAll,
		Dispatcher:     dispatcher,
	})
	var captured []events.Event
	dispatcher.Subscribe(events.EventClaimStatusChanged, func(_ context.Context, e events.Event) error {
		captured = append(captured, e)
		return nil
	})

	claim := seedClaim(t, claims, domain.ClaimUnderReview, "consumer-1")
	if _, err := svc.Approve(context.Background(), adminActor("reviewer-1"), claim.ID, "ok"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("events = %d, want 1", len(captured))
	}
	payload, ok := captured[0].Payload.(events.ClaimStatusChangedPayload)
	if !ok {
		t.Fatalf("payload type %T", captured[0].Payload)
	}
	if payload.FromStatus != domain.ClaimUnderReview || payload.ToStatus != domain.ClaimApproved {
		t.Fatalf("payload = %s -> %s", payload.FromStatus, payload.ToStatus)
	}
	if payload.ConsumerID != "consumer-1" {
		t.Fatalf("payload consumer = %s", payload.ConsumerID)
	}

	// a failed transition publishes nothing
	if _, err := svc.Approve(context.Background(), adminActor("reviewer-1"), claim.ID, "again"); err == nil {
		t.Fatalf("second approve should fail")
	}
	if len(captured) != 1 {
		t.Fatalf("failed transition leaked an event")
	}
}
