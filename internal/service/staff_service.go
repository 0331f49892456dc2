package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// StaffService manages the staff directory and its supervision tree.
type StaffService struct {
	staff       repository.StaffRepository
	users       repository.UserRepository
	roles       repository.RoleRepository
	permissions PermissionChecker
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository, users repository.UserRepository, roles repository.RoleRepository, permissions PermissionChecker) *StaffService {
	return &StaffService{staff: staff, users: users, roles: roles, permissions: permissions}
}

// StaffCreateInput describes a new staff profile.
type StaffCreateInput struct {
	UserID           string
	RoleID           *string
	SupervisorUserID *string
	HireDate         time.Time
	Notes            string
}

// StaffUpdateInput carries mutable profile fields. Nil means unchanged.
type StaffUpdateInput struct {
	RoleID           *string
	SupervisorUserID *string
	ClearSupervisor  bool
	IsActive         *bool
	Notes            *string
}

// CreateStaff promotes a privileged account into the staff directory.
func (s *StaffService) CreateStaff(ctx context.Context, actor *domain.Actor, input StaffCreateInput) (*domain.StaffUser, error) {
	if err := s.requireManage(ctx, actor, domain.ActionCreate); err != nil {
		return nil, err
	}
	candidate, err := s.users.GetByID(ctx, input.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewInvalidStaffCandidate("candidate account does not exist")
	}
	if err != nil {
		return nil, err
	}
	if candidate.Tier != domain.TierAdmin || !candidate.IsActive {
		return nil, util.NewInvalidStaffCandidate("staff candidates must be active privileged accounts")
	}

	if _, err := s.staff.GetByUserID(ctx, input.UserID); err == nil {
		return nil, util.NewDuplicateStaffProfile(input.UserID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if input.RoleID != nil {
		if _, err := s.roles.GetByID(ctx, *input.RoleID); err != nil {
			return nil, err
		}
	}
	if input.SupervisorUserID != nil {
		if err := s.validateSupervisor(ctx, input.UserID, *input.SupervisorUserID); err != nil {
			return nil, err
		}
	}

	hireDate := input.HireDate
	if hireDate.IsZero() {
		hireDate = time.Now()
	}
	profile := &domain.StaffUser{
		UserID:       input.UserID,
		RoleID:       input.RoleID,
		SupervisorID: input.SupervisorUserID,
		HireDate:     hireDate,
		IsActive:     true,
		Notes:        strings.TrimSpace(input.Notes),
	}
	if err := s.staff.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateStaff mutates a staff profile, revalidating the supervision tree
// whenever the supervisor changes.
func (s *StaffService) UpdateStaff(ctx context.Context, actor *domain.Actor, staffID string, input StaffUpdateInput) (*domain.StaffUser, error) {
	if err := s.requireManage(ctx, actor, domain.ActionUpdate); err != nil {
		return nil, err
	}
	profile, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if input.RoleID != nil {
		if _, err := s.roles.GetByID(ctx, *input.RoleID); err != nil {
			return nil, err
		}
		profile.RoleID = input.RoleID
	}
	if input.ClearSupervisor {
		profile.SupervisorID = nil
	} else if input.SupervisorUserID != nil {
		if err := s.validateSupervisor(ctx, profile.UserID, *input.SupervisorUserID); err != nil {
			return nil, err
		}
		profile.SupervisorID = input.SupervisorUserID
	}
	if input.IsActive != nil {
		profile.IsActive = *input.IsActive
	}
	if input.Notes != nil {
		profile.Notes = strings.TrimSpace(*input.Notes)
	}
	if err := s.staff.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetStaff returns one profile.
func (s *StaffService) GetStaff(ctx context.Context, actor *domain.Actor, staffID string) (*domain.StaffUser, error) {
	if err := s.requireManage(ctx, actor, domain.ActionView); err != nil {
		return nil, err
	}
	return s.staff.GetByID(ctx, staffID)
}

// ListStaff returns profiles matching the filter.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.Actor, filter repository.StaffFilter) ([]domain.StaffUser, error) {
	if err := s.requireManage(ctx, actor, domain.ActionView); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, filter)
}

// validateSupervisor rejects self-supervision and any assignment that
// would close a cycle in the supervision tree. The walk is bounded by a
// visited set so a corrupt chain cannot loop forever.
func (s *StaffService) validateSupervisor(ctx context.Context, staffUserID, supervisorUserID string) error {
	if supervisorUserID == staffUserID {
		return util.NewSelfSupervision()
	}
	supervisor, err := s.staff.GetByUserID(ctx, supervisorUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewValidationError("supervisor must be a staff member", map[string]any{"user_id": supervisorUserID})
	}
	if err != nil {
		return err
	}
	if !supervisor.IsActive {
		return util.NewValidationError("supervisor staff profile is inactive", map[string]any{"user_id": supervisorUserID})
	}

	visited := map[string]struct{}{staffUserID: {}}
	current := supervisor
	for {
		if _, seen := visited[current.UserID]; seen {
			return util.NewCircularSupervision(staffUserID)
		}
		visited[current.UserID] = struct{}{}
		if current.SupervisorID == nil {
			return nil
		}
		next, err := s.staff.GetByUserID(ctx, *current.SupervisorID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		current = next
	}
}

func (s *StaffService) requireManage(ctx context.Context, actor *domain.Actor, action domain.Action) error {
	if actor == nil || actor.User == nil {
		return util.NewUnauthorized("actor required")
	}
	allowed, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceUsers, action)
	if err != nil {
		return err
	}
	if !allowed {
		return util.NewPermissionDenied("actor cannot manage staff")
	}
	return nil
}
