package domain

import "time"

// StaffUser attaches a role and an optional supervisor to a privileged
// account. Supervisor references form a tree: a profile never supervises
// itself and the chain of supervisors always terminates.
type StaffUser struct {
	ID           string
	UserID       string
	RoleID       *string
	SupervisorID *string
	HireDate     time.Time
	IsActive     bool
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
