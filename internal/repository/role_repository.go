package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// RoleRepository handles persistence for roles and their grants.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Role, error)
	AddGrant(ctx context.Context, grant *domain.Grant) error
	RemoveGrant(ctx context.Context, grantID string) error
	ListGrants(ctx context.Context, roleID string) ([]domain.Grant, error)
	GrantExists(ctx context.Context, roleID string, resource domain.Resource, action domain.Action) (bool, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository instantiates the repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		role.Name,
		role.Description,
		role.IsActive,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET description=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, role.Description, role.IsActive, role.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM roles WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *roleRepository) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM roles WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *roleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context, includeInactive bool) ([]domain.Role, error) {
	query := `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM roles`
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.IsActive,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *roleRepository) AddGrant(ctx context.Context, grant *domain.Grant) error {
	const query = `
        INSERT INTO grants (role_id, resource, action, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		grant.RoleID,
		grant.Resource,
		grant.Action,
		grant.Description,
	).Scan(&grant.ID, &grant.CreatedAt)
}

func (r *roleRepository) RemoveGrant(ctx context.Context, grantID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM grants WHERE id=$1`, grantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *roleRepository) ListGrants(ctx context.Context, roleID string) ([]domain.Grant, error) {
	const query = `
        SELECT id, role_id, resource, action, description, created_at
        FROM grants WHERE role_id=$1 ORDER BY resource, action`
	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Grant
	for rows.Next() {
		var grant domain.Grant
		if err := rows.Scan(
			&grant.ID,
			&grant.RoleID,
			&grant.Resource,
			&grant.Action,
			&grant.Description,
			&grant.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, grant)
	}
	return result, rows.Err()
}

func (r *roleRepository) GrantExists(ctx context.Context, roleID string, resource domain.Resource, action domain.Action) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM grants WHERE role_id=$1 AND resource=$2 AND action=$3
        )`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, roleID, resource, action).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
