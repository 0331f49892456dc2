package dto

import (
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// StaffCreateRequest payload for promoting an account to staff.
type StaffCreateRequest struct {
	UserID           string     `json:"user_id"`
	RoleID           *string    `json:"role_id,omitempty"`
	SupervisorUserID *string    `json:"supervisor_user_id,omitempty"`
	HireDate         *time.Time `json:"hire_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// StaffUpdateRequest payload for profile updates.
type StaffUpdateRequest struct {
	RoleID           *string `json:"role_id,omitempty"`
	SupervisorUserID *string `json:"supervisor_user_id,omitempty"`
	ClearSupervisor  bool    `json:"clear_supervisor,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// StaffResponse is the API view of a staff profile.
type StaffResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RoleID       *string   `json:"role_id,omitempty"`
	SupervisorID *string   `json:"supervisor_user_id,omitempty"`
	HireDate     time.Time `json:"hire_date"`
	IsActive     bool      `json:"is_active"`
	Notes        string    `json:"notes,omitempty"`
}

// NewStaffResponse maps the domain model.
func NewStaffResponse(s *domain.StaffUser) StaffResponse {
	return StaffResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		RoleID:       s.RoleID,
		SupervisorID: s.SupervisorID,
		HireDate:     s.HireDate,
		IsActive:     s.IsActive,
		Notes:        s.Notes,
	}
}
