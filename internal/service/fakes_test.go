package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lithovolt/warranty-service/internal/domain"
	"github.com/lithovolt/warranty-service/internal/repository"
)

// allowAll grants everything; denyAll grants nothing.
type permFunc func(actor *domain.Actor, resource domain.Resource, action domain.Action) bool

func (f permFunc) ActorHasPermission(_ context.Context, actor *domain.Actor, resource domain.Resource, action domain.Action) (bool, error) {
	return f(actor, resource, action), nil
}

var allowAll = permFunc(func(*domain.Actor, domain.Resource, domain.Action) bool { return true })
var denyAll = permFunc(func(*domain.Actor, domain.Resource, domain.Action) bool { return false })

// grantTable mirrors the seeded grant matrix for permission tests.
func grantsOnly(granted ...[2]string) permFunc {
	return func(actor *domain.Actor, resource domain.Resource, action domain.Action) bool {
		if actor.Kind == domain.ActorAdmin {
			return true
		}
		if actor.Kind != domain.ActorStaff {
			return false
		}
		for _, g := range granted {
			if g[0] == string(resource) && g[1] == string(action) {
				return true
			}
		}
		return false
	}
}

type fakeClaimRepo struct {
	mu      sync.Mutex
	claims  map[string]*domain.WarrantyClaim
	history map[string][]domain.ClaimStatusHistory
	seq     int
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{
		claims:  map[string]*domain.WarrantyClaim{},
		history: map[string][]domain.ClaimStatusHistory{},
	}
}

func (f *fakeClaimRepo) Create(_ context.Context, claim *domain.WarrantyClaim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	claim.ID = fmt.Sprintf("claim-%d", f.seq)
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = claim.CreatedAt
	stored := *claim
	f.claims[claim.ID] = &stored
	return nil
}

func (f *fakeClaimRepo) GetByID(_ context.Context, id string) (*domain.WarrantyClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.claims[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	claim := *stored
	return &claim, nil
}

func (f *fakeClaimRepo) ListWithFilter(_ context.Context, filter repository.ClaimFilter) ([]domain.WarrantyClaim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WarrantyClaim
	for _, stored := range f.claims {
		if filter.ConsumerID != nil && stored.ConsumerID != *filter.ConsumerID {
			continue
		}
		if filter.AssignedToID != nil && (stored.AssignedToID == nil || *stored.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, st := range filter.Statuses {
				if stored.Status == st {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *stored)
	}
	return out, nil
}

// ApplyTransition mirrors the production compare-and-swap: the update
// lands only if the stored status still matches from.
func (f *fakeClaimRepo) ApplyTransition(_ context.Context, claim *domain.WarrantyClaim, from domain.ClaimStatus, entry *domain.ClaimStatusHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.claims[claim.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != from {
		return repository.ErrStatusConflict
	}
	updated := *claim
	updated.UpdatedAt = time.Now()
	f.claims[claim.ID] = &updated

	f.seq++
	entry.ID = fmt.Sprintf("hist-%d", f.seq)
	entry.CreatedAt = time.Now()
	f.history[claim.ID] = append(f.history[claim.ID], *entry)
	return nil
}

type fakeHistoryRepo struct {
	claims *fakeClaimRepo
}

func (f *fakeHistoryRepo) ListByClaim(_ context.Context, claimID string) ([]domain.ClaimStatusHistory, error) {
	f.claims.mu.Lock()
	defer f.claims.mu.Unlock()
	rows := f.claims.history[claimID]
	out := make([]domain.ClaimStatusHistory, len(rows))
	// newest first, matching the production ordering
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	mu      sync.Mutex
	byClaim map[string][]domain.ClaimAttachment
	seq     int
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{byClaim: map[string][]domain.ClaimAttachment{}}
}

func (f *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.ClaimAttachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	attachment.ID = fmt.Sprintf("att-%d", f.seq)
	attachment.CreatedAt = time.Now()
	f.byClaim[attachment.ClaimID] = append(f.byClaim[attachment.ClaimID], *attachment)
	return nil
}

func (f *fakeAttachmentRepo) ListByClaim(_ context.Context, claimID string) ([]domain.ClaimAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ClaimAttachment{}, f.byClaim[claimID]...), nil
}

type fakeStaffRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.StaffUser
	byUserID map[string]*domain.StaffUser
	seq      int
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byID: map[string]*domain.StaffUser{}, byUserID: map[string]*domain.StaffUser{}}
}

func (f *fakeStaffRepo) Create(_ context.Context, staff *domain.StaffUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	staff.ID = fmt.Sprintf("staff-%d", f.seq)
	staff.CreatedAt = time.Now()
	stored := *staff
	f.byID[staff.ID] = &stored
	f.byUserID[staff.UserID] = &stored
	return nil
}

func (f *fakeStaffRepo) Update(_ context.Context, staff *domain.StaffUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *staff
	f.byID[staff.ID] = &stored
	f.byUserID[staff.UserID] = &stored
	return nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	staff := *stored
	return &staff, nil
}

func (f *fakeStaffRepo) GetByUserID(_ context.Context, userID string) (*domain.StaffUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byUserID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	staff := *stored
	return &staff, nil
}

func (f *fakeStaffRepo) List(_ context.Context, _ repository.StaffFilter) ([]domain.StaffUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StaffUser
	for _, stored := range f.byID {
		out = append(out, *stored)
	}
	return out, nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.User
	seq  int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byID: map[string]*domain.User{}}
	for _, u := range users {
		stored := *u
		repo.byID[u.ID] = &stored
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	stored := *user
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := *stored
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.byID {
		if stored.Email != nil && *stored.Email == email {
			user := *stored
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRoleRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Role
	grants map[string][]domain.Grant
	seq    int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{byID: map[string]*domain.Role{}, grants: map[string][]domain.Grant{}}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	role.ID = fmt.Sprintf("role-%d", f.seq)
	stored := *role
	f.byID[role.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *role
	f.byID[role.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	role := *stored
	return &role, nil
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.byID {
		if stored.Name == name {
			role := *stored
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) List(_ context.Context, _ bool) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Role
	for _, stored := range f.byID {
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeRoleRepo) AddGrant(_ context.Context, grant *domain.Grant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	grant.ID = fmt.Sprintf("grant-%d", f.seq)
	f.grants[grant.RoleID] = append(f.grants[grant.RoleID], *grant)
	return nil
}

func (f *fakeRoleRepo) RemoveGrant(_ context.Context, grantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for roleID, grants := range f.grants {
		for i, g := range grants {
			if g.ID == grantID {
				f.grants[roleID] = append(grants[:i], grants[i+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeRoleRepo) ListGrants(_ context.Context, roleID string) ([]domain.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Grant{}, f.grants[roleID]...), nil
}

func (f *fakeRoleRepo) GrantExists(_ context.Context, roleID string, resource domain.Resource, action domain.Action) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.grants[roleID] {
		if g.Resource == resource && g.Action == action {
			return true, nil
		}
	}
	return false, nil
}

type fakeWarrantyRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Warranty
	seq  int
}

func newFakeWarrantyRepo() *fakeWarrantyRepo {
	return &fakeWarrantyRepo{byID: map[string]*domain.Warranty{}}
}

func (f *fakeWarrantyRepo) Create(_ context.Context, warranty *domain.Warranty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	warranty.ID = fmt.Sprintf("warranty-%d", f.seq)
	stored := *warranty
	f.byID[warranty.ID] = &stored
	return nil
}

func (f *fakeWarrantyRepo) Update(_ context.Context, warranty *domain.Warranty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *warranty
	f.byID[warranty.ID] = &stored
	return nil
}

func (f *fakeWarrantyRepo) GetByID(_ context.Context, id string) (*domain.Warranty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	warranty := *stored
	return &warranty, nil
}

func (f *fakeWarrantyRepo) GetByNumber(_ context.Context, number string) (*domain.Warranty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.byID {
		if stored.WarrantyNumber == number {
			warranty := *stored
			return &warranty, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeWarrantyRepo) GetBySerial(_ context.Context, _ string) (*domain.Warranty, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeWarrantyRepo) ListWithFilter(_ context.Context, filter repository.WarrantyFilter) ([]domain.Warranty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Warranty
	for _, stored := range f.byID {
		if filter.ConsumerID != nil && (stored.ConsumerID == nil || *stored.ConsumerID != *filter.ConsumerID) {
			continue
		}
		out = append(out, *stored)
	}
	return out, nil
}

type fakeInventoryRepo struct {
	mu      sync.Mutex
	models  map[string]*domain.BatteryModel
	serials map[string]*domain.SerialNumber
	seq     int
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{models: map[string]*domain.BatteryModel{}, serials: map[string]*domain.SerialNumber{}}
}

func (f *fakeInventoryRepo) CreateModel(_ context.Context, model *domain.BatteryModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	model.ID = fmt.Sprintf("model-%d", f.seq)
	stored := *model
	f.models[model.ID] = &stored
	return nil
}

func (f *fakeInventoryRepo) GetModelByID(_ context.Context, id string) (*domain.BatteryModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.models[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	model := *stored
	return &model, nil
}

func (f *fakeInventoryRepo) ListModels(_ context.Context, _ bool) ([]domain.BatteryModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BatteryModel
	for _, stored := range f.models {
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeInventoryRepo) CreateSerials(_ context.Context, serials []domain.SerialNumber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range serials {
		f.seq++
		serials[i].ID = fmt.Sprintf("serial-%d", f.seq)
		stored := serials[i]
		f.serials[stored.Serial] = &stored
	}
	return nil
}

func (f *fakeInventoryRepo) GetSerial(_ context.Context, serial string) (*domain.SerialNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.serials[serial]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	unit := *stored
	return &unit, nil
}

func (f *fakeInventoryRepo) MarkSerialSold(_ context.Context, serialID, consumerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.serials {
		if stored.ID == serialID && stored.Status == domain.SerialAllocated {
			now := time.Now()
			stored.Status = domain.SerialSold
			stored.SoldToID = &consumerID
			stored.SoldAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeInventoryRepo) AllocateSerials(_ context.Context, allocation *domain.StockAllocation) ([]domain.SerialNumber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var candidates []*domain.SerialNumber
	for _, stored := range f.serials {
		if len(candidates) == allocation.Quantity {
			break
		}
		if stored.BatteryModelID == allocation.BatteryModelID && stored.Status == domain.SerialAvailable {
			candidates = append(candidates, stored)
		}
	}
	if len(candidates) < allocation.Quantity {
		return nil, repository.ErrInsufficientStock
	}
	var picked []domain.SerialNumber
	for _, stored := range candidates {
		stored.Status = domain.SerialAllocated
		stored.AllocatedToID = &allocation.WholesalerID
		stored.AllocatedAt = &now
		picked = append(picked, *stored)
	}
	f.seq++
	allocation.ID = fmt.Sprintf("alloc-%d", f.seq)
	allocation.CreatedAt = now
	return picked, nil
}

func (f *fakeInventoryRepo) CountByStatus(_ context.Context, modelID string, status domain.SerialStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, stored := range f.serials {
		if stored.BatteryModelID == modelID && stored.Status == status {
			count++
		}
	}
	return count, nil
}

func adminActor(userID string) *domain.Actor {
	return &domain.Actor{
		Kind: domain.ActorAdmin,
		User: &domain.User{ID: userID, Tier: domain.TierAdmin, IsActive: true},
	}
}

func staffActor(userID, roleID string) *domain.Actor {
	return &domain.Actor{
		Kind:  domain.ActorStaff,
		User:  &domain.User{ID: userID, Tier: domain.TierAdmin, IsActive: true},
		Staff: &domain.StaffUser{ID: "staff-" + userID, UserID: userID, RoleID: &roleID, IsActive: true},
	}
}

func consumerActor(userID string) *domain.Actor {
	return &domain.Actor{
		Kind: domain.ActorConsumer,
		User: &domain.User{ID: userID, Tier: domain.TierConsumer, IsActive: true},
	}
}
