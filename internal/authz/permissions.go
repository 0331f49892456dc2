// Package authz resolves acting identities and answers permission
// checks against the role grant tables.
package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/repository"
)

// Store answers whether an actor may perform an action on a resource.
// Each check is a pure lookup; nothing is cached or mutated.
type Store struct {
	staff repository.StaffRepository
	roles repository.RoleRepository
}

// NewStore constructs the permission store.
func NewStore(staff repository.StaffRepository, roles repository.RoleRepository) *Store {
	return &Store{staff: staff, roles: roles}
}

// ResolveActor classifies an account into exactly one actor kind. A
// privileged account with an active staff profile acts as staff and is
// judged by its grants; the plain admin kind keeps the superuser bypass.
func (s *Store) ResolveActor(ctx context.Context, user *domain.User) (*domain.Actor, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}
	if user.Tier == domain.TierAdmin {
		profile, err := s.staff.GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			// A staff profile, even a deactivated one, pins the account to
			// the staff kind. Revoking the profile restores the bypass.
			return &domain.Actor{Kind: domain.ActorStaff, User: user, Staff: profile}, nil
		case errors.Is(err, pgx.ErrNoRows):
			return &domain.Actor{Kind: domain.ActorAdmin, User: user}, nil
		default:
			return nil, err
		}
	}
	if user.Tier == domain.TierWholesaler {
		return &domain.Actor{Kind: domain.ActorWholesaler, User: user}, nil
	}
	return &domain.Actor{Kind: domain.ActorConsumer, User: user}, nil
}

// HasPermission reports whether the account may perform action on
// resource. Inactive accounts never pass.
func (s *Store) HasPermission(ctx context.Context, user *domain.User, resource domain.Resource, action domain.Action) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	actor, err := s.ResolveActor(ctx, user)
	if err != nil {
		return false, err
	}
	return s.ActorHasPermission(ctx, actor, resource, action)
}

// ActorHasPermission evaluates a resolved actor against the grant table.
func (s *Store) ActorHasPermission(ctx context.Context, actor *domain.Actor, resource domain.Resource, action domain.Action) (bool, error) {
	switch actor.Kind {
	case domain.ActorAdmin:
		return true, nil
	case domain.ActorStaff:
		if actor.Staff == nil || !actor.Staff.IsActive || actor.Staff.RoleID == nil {
			return false, nil
		}
		return s.roles.GrantExists(ctx, *actor.Staff.RoleID, resource, action)
	case domain.ActorWholesaler, domain.ActorConsumer:
		return false, nil
	default:
		return false, nil
	}
}
