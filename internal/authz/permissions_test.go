package authz

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/repository"
)

type fakeStaffRepo struct {
	byUserID map[string]*domain.StaffUser
}

func (f *fakeStaffRepo) Create(ctx context.Context, staff *domain.StaffUser) error { return nil }
func (f *fakeStaffRepo) Update(ctx context.Context, staff *domain.StaffUser) error { return nil }
func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeStaffRepo) GetByUserID(ctx context.Context, userID string) (*domain.StaffUser, error) {
	if s, ok := f.byUserID[userID]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}
func (f *fakeStaffRepo) List(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffUser, error) {
	return nil, nil
}

type fakeRoleRepo struct {
	grants map[string]bool // roleID|resource|action
}

func grantKey(roleID string, resource domain.Resource, action domain.Action) string {
	return roleID + "|" + string(resource) + "|" + string(action)
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *domain.Role) error { return nil }
func (f *fakeRoleRepo) Update(ctx context.Context, role *domain.Role) error { return nil }
func (f *fakeRoleRepo) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeRoleRepo) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeRoleRepo) List(ctx context.Context, includeInactive bool) ([]domain.Role, error) {
	return nil, nil
}
func (f *fakeRoleRepo) AddGrant(ctx context.Context, grant *domain.Grant) error { return nil }
func (f *fakeRoleRepo) RemoveGrant(ctx context.Context, grantID string) error   { return nil }
func (f *fakeRoleRepo) ListGrants(ctx context.Context, roleID string) ([]domain.Grant, error) {
	return nil, nil
}
func (f *fakeRoleRepo) GrantExists(ctx context.Context, roleID string, resource domain.Resource, action domain.Action) (bool, error) {
	return f.grants[grantKey(roleID, resource, action)], nil
}

func newTestStore(staff map[string]*domain.StaffUser, grants map[string]bool) *Store {
	if staff == nil {
		staff = map[string]*domain.StaffUser{}
	}
	if grants == nil {
		grants = map[string]bool{}
	}
	return NewStore(&fakeStaffRepo{byUserID: staff}, &fakeRoleRepo{grants: grants})
}

func activeUser(id string, tier domain.UserTier) *domain.User {
	return &domain.User{ID: id, Tier: tier, IsActive: true}
}

func TestResolveActorBareAdmin(t *testing.T) {
	store := newTestStore(nil, nil)
	actor, err := store.ResolveActor(context.Background(), activeUser("u1", domain.TierAdmin))
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if actor.Kind != domain.ActorAdmin {
		t.Fatalf("kind = %s, want ADMIN", actor.Kind)
	}
}

func TestResolveActorStaffProfileWins(t *testing.T) {
	roleID := "role-support"
	staff := map[string]*domain.StaffUser{
		"u1": {ID: "s1", UserID: "u1", RoleID: &roleID, IsActive: true},
	}
	store := newTestStore(staff, nil)
	actor, err := store.ResolveActor(context.Background(), activeUser("u1", domain.TierAdmin))
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if actor.Kind != domain.ActorStaff {
		t.Fatalf("kind = %s, want STAFF", actor.Kind)
	}
	if actor.Staff == nil || actor.Staff.ID != "s1" {
		t.Fatalf("staff profile not attached")
	}
}

func TestHasPermissionInactiveStaffDenied(t *testing.T) {
	roleID := "role-support"
	staff := map[string]*domain.StaffUser{
		"u1": {ID: "s1", UserID: "u1", RoleID: &roleID, IsActive: false},
	}
	grants := map[string]bool{
		grantKey(roleID, domain.ResourceWarrantyClaims, domain.ActionView): true,
	}
	store := newTestStore(staff, grants)
	ok, err := store.HasPermission(context.Background(), activeUser("u1", domain.TierAdmin), domain.ResourceWarrantyClaims, domain.ActionView)
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if ok {
		t.Fatalf("deactivated staff profile must be denied")
	}
}

func TestHasPermissionStaffGrantCheck(t *testing.T) {
	roleID := "role-support"
	staff := map[string]*domain.StaffUser{
		"u1": {ID: "s1", UserID: "u1", RoleID: &roleID, IsActive: true},
	}
	grants := map[string]bool{
		grantKey(roleID, domain.ResourceWarrantyClaims, domain.ActionApprove): true,
	}
	store := newTestStore(staff, grants)
	ctx := context.Background()
	user := activeUser("u1", domain.TierAdmin)

	ok, err := store.HasPermission(ctx, user, domain.ResourceWarrantyClaims, domain.ActionApprove)
	if err != nil || !ok {
		t.Fatalf("granted action = (%v, %v), want allowed", ok, err)
	}
	ok, err = store.HasPermission(ctx, user, domain.ResourceOrders, domain.ActionCreate)
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if ok {
		t.Fatalf("staff actor bypassed grants for ungranted action")
	}
}

func TestHasPermissionBareAdminBypass(t *testing.T) {
	store := newTestStore(nil, nil)
	ok, err := store.HasPermission(context.Background(), activeUser("u1", domain.TierAdmin), domain.ResourceSettings, domain.ActionDelete)
	if err != nil || !ok {
		t.Fatalf("admin bypass = (%v, %v), want allowed", ok, err)
	}
}

func TestHasPermissionDeniedKinds(t *testing.T) {
	roleID := "role-support"
	grants := map[string]bool{
		grantKey(roleID, domain.ResourceWarrantyClaims, domain.ActionView): true,
	}
	cases := []struct {
		name string
		user *domain.User
	}{
		{"wholesaler", activeUser("w1", domain.TierWholesaler)},
		{"consumer", activeUser("c1", domain.TierConsumer)},
		{"inactive account", &domain.User{ID: "u1", Tier: domain.TierAdmin, IsActive: false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(nil, grants)
			ok, err := store.HasPermission(context.Background(), tc.user, domain.ResourceWarrantyClaims, domain.ActionView)
			if err != nil {
				t.Fatalf("HasPermission: %v", err)
			}
			if ok {
				t.Fatalf("%s should be denied", tc.name)
			}
		})
	}
}

func TestHasPermissionStaffWithoutRole(t *testing.T) {
	staff := map[string]*domain.StaffUser{
		"u1": {ID: "s1", UserID: "u1", RoleID: nil, IsActive: true},
	}
	store := newTestStore(staff, nil)
	ok, err := store.HasPermission(context.Background(), activeUser("u1", domain.TierAdmin), domain.ResourceWarrantyClaims, domain.ActionView)
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if ok {
		t.Fatalf("staff without a role must be denied")
	}
}
