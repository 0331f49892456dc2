package service

import (
	"context"
	"strings"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/repository"
	"github.com/lithovolt/warranty-service/pkg/util"
)

// validRoleNames is the closed set of role identifiers.
var validRoleNames = map[domain.RoleName]struct{}{
	domain.RoleManager: {},
	domain.RoleSupport: {},
	domain.RoleSales:   {},
	domain.RoleTech:    {},
}

var validResources = map[domain.Resource]struct{}{
	domain.ResourceInventory:      {},
	domain.ResourceOrders:         {},
	domain.ResourceWarrantyClaims: {},
	domain.ResourceUsers:          {},
	domain.ResourceReports:        {},
	domain.ResourceSettings:       {},
}

var validActions = map[domain.Action]struct{}{
	domain.ActionView:    {},
	domain.ActionCreate:  {},
	domain.ActionUpdate:  {},
	domain.ActionDelete:  {},
	domain.ActionApprove: {},
	domain.ActionAssign:  {},
}

// RoleService manages roles and their permission grants. All operations
// require the settings grant or the admin bypass.
type RoleService struct {
	roles       repository.RoleRepository
	permissions PermissionChecker
}

// NewRoleService constructs the service.
func NewRoleService(roles repository.RoleRepository, permissions PermissionChecker) *RoleService {
	return &RoleService{roles: roles, permissions: permissions}
}

// CreateRole registers one of the known role names.
func (s *RoleService) CreateRole(ctx context.Context, actor *domain.Actor, name domain.RoleName, description string) (*domain.Role, error) {
	if err := s.require(ctx, actor, domain.ActionCreate); err != nil {
		return nil, err
	}
	if _, ok := validRoleNames[name]; !ok {
		return nil, util.NewValidationError("unknown role name", map[string]any{"name": string(name)})
	}
	role := &domain.Role{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// ListRoles returns roles with their grants attached.
func (s *RoleService) ListRoles(ctx context.Context, actor *domain.Actor, includeInactive bool) ([]domain.Role, error) {
	if err := s.require(ctx, actor, domain.ActionView); err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		grants, err := s.roles.ListGrants(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Grants = grants
	}
	return roles, nil
}

// AddGrant attaches a (resource, action) pair to a role.
func (s *RoleService) AddGrant(ctx context.Context, actor *domain.Actor, roleID string, resource domain.Resource, action domain.Action, description string) (*domain.Grant, error) {
	if err := s.require(ctx, actor, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if _, ok := validResources[resource]; !ok {
		return nil, util.NewValidationError("unknown resource", map[string]any{"resource": string(resource)})
	}
	if _, ok := validActions[action]; !ok {
		return nil, util.NewValidationError("unknown action", map[string]any{"action": string(action)})
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	exists, err := s.roles.GrantExists(ctx, roleID, resource, action)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.NewConflict("grant already present", map[string]any{
			"resource": string(resource),
			"action":   string(action),
		})
	}
	grant := &domain.Grant{
		RoleID:      roleID,
		Resource:    resource,
		Action:      action,
		Description: strings.TrimSpace(description),
	}
	if err := s.roles.AddGrant(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// RemoveGrant detaches a grant from its role.
func (s *RoleService) RemoveGrant(ctx context.Context, actor *domain.Actor, grantID string) error {
	if err := s.require(ctx, actor, domain.ActionUpdate); err != nil {
		return err
	}
	return s.roles.RemoveGrant(ctx, grantID)
}

func (s *RoleService) require(ctx context.Context, actor *domain.Actor, action domain.Action) error {
	if actor == nil || actor.User == nil {
		return util.NewUnauthorized("actor required")
	}
	allowed, err := s.permissions.ActorHasPermission(ctx, actor, domain.ResourceSettings, action)
	if err != nil {
		return err
	}
	if !allowed {
		return util.NewPermissionDenied("actor cannot manage roles")
	}
	return nil
}
