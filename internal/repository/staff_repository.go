package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// StaffRepository handles persistence for staff profiles.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffUser) error
	Update(ctx context.Context, staff *domain.StaffUser) error
	GetByID(ctx context.Context, id string) (*domain.StaffUser, error)
	GetByUserID(ctx context.Context, userID string) (*domain.StaffUser, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffUser, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	RoleID *string
	Active *bool
	Limit  int
	Offset int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffUser) error {
	const query = `
        INSERT INTO staff_users (user_id, role_id, supervisor_user_id, hire_date, is_active, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.UserID,
		staff.RoleID,
		staff.SupervisorID,
		staff.HireDate,
		staff.IsActive,
		staff.Notes,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffUser) error {
	const query = `
        UPDATE staff_users
        SET role_id=$1, supervisor_user_id=$2, is_active=$3, notes=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		staff.RoleID,
		staff.SupervisorID,
		staff.IsActive,
		staff.Notes,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, user_id, role_id, supervisor_user_id, hire_date, is_active, notes, created_at, updated_at
        FROM staff_users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByUserID(ctx context.Context, userID string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, user_id, role_id, supervisor_user_id, hire_date, is_active, notes, created_at, updated_at
        FROM staff_users WHERE user_id=$1`
	return r.fetchSingle(ctx, query, userID)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.UserID,
		&staff.RoleID,
		&staff.SupervisorID,
		&staff.HireDate,
		&staff.IsActive,
		&staff.Notes,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffUser, error) {
	query := `
        SELECT id, user_id, role_id, supervisor_user_id, hire_date, is_active, notes, created_at, updated_at
        FROM staff_users`
	args := []any{}
	clauses := []string{}

	if filter.RoleID != nil {
		args = append(args, *filter.RoleID)
		clauses = append(clauses, fmt.Sprintf("role_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffUser
	for rows.Next() {
		var staff domain.StaffUser
		if err := rows.Scan(
			&staff.ID,
			&staff.UserID,
			&staff.RoleID,
			&staff.SupervisorID,
			&staff.HireDate,
			&staff.IsActive,
			&staff.Notes,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}
