package domain

import "time"

// RoleName enumerates the staff roles the platform recognizes.
type RoleName string

const (
	RoleManager RoleName = "MANAGER"
	RoleSupport RoleName = "SUPPORT"
	RoleSales   RoleName = "SALES"
	RoleTech    RoleName = "TECH"
)

// Resource enumerates the protected resource domains.
type Resource string

const (
	ResourceInventory      Resource = "INVENTORY"
	ResourceOrders         Resource = "ORDERS"
	ResourceWarrantyClaims Resource = "WARRANTY_CLAIMS"
	ResourceUsers          Resource = "USERS"
	ResourceReports        Resource = "REPORTS"
	ResourceSettings       Resource = "SETTINGS"
)

// Action enumerates the operations a grant can permit on a resource.
type Action string

const (
	ActionView    Action = "VIEW"
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionApprove Action = "APPROVE"
	ActionAssign  Action = "ASSIGN"
)

// Role groups grants under a named staff function.
type Role struct {
	ID          string
	Name        RoleName
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Grants      []Grant
}

// Grant permits one action on one resource for every holder of a role.
// (role, resource, action) is unique; grants are deleted with their role.
type Grant struct {
	ID          string
	RoleID      string
	Resource    Resource
	Action      Action
	Description string
	CreatedAt   time.Time
}
