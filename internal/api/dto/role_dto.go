package dto

import "github.com/lithovolt/warranty-service/internal/domain"

// RoleCreateRequest payload for registering a role.
type RoleCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GrantRequest payload for attaching a grant.
type GrantRequest struct {
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// GrantResponse is the API view of a grant.
type GrantResponse struct {
	ID       string `json:"id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// RoleResponse is the API view of a role with its grants.
type RoleResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	Grants      []GrantResponse `json:"grants"`
}

// NewRoleResponse maps the domain model.
func NewRoleResponse(role *domain.Role) RoleResponse {
	grants := make([]GrantResponse, 0, len(role.Grants))
	for _, g := range role.Grants {
		grants = append(grants, GrantResponse{
			ID:       g.ID,
			Resource: string(g.Resource),
			Action:   string(g.Action),
		})
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        string(role.Name),
		Description: role.Description,
		IsActive:    role.IsActive,
		Grants:      grants,
	}
}
