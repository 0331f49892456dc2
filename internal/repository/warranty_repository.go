package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// WarrantyFilter captures warranty listing parameters.
type WarrantyFilter struct {
	ConsumerID *string
	IssuedByID *string
	Statuses   []domain.WarrantyStatus
	Limit      int
	Offset     int
}

// WarrantyRepository encapsulates warranty persistence.
type WarrantyRepository interface {
	Create(ctx context.Context, warranty *domain.Warranty) error
	Update(ctx context.Context, warranty *domain.Warranty) error
	GetByID(ctx context.Context, id string) (*domain.Warranty, error)
	GetByNumber(ctx context.Context, warrantyNumber string) (*domain.Warranty, error)
	GetBySerial(ctx context.Context, serial string) (*domain.Warranty, error)
	ListWithFilter(ctx context.Context, filter WarrantyFilter) ([]domain.Warranty, error)
}

type warrantyRepository struct {
	pool *pgxpool.Pool
}

// NewWarrantyRepository instantiates the repository.
func NewWarrantyRepository(pool *pgxpool.Pool) WarrantyRepository {
	return &warrantyRepository{pool: pool}
}

const warrantyColumns = `id, warranty_number, serial_number_id, consumer_id, issued_by_id,
               issued_at, start_date, end_date, status, notes, created_at, updated_at`

func (r *warrantyRepository) Create(ctx context.Context, warranty *domain.Warranty) error {
	const query = `
        INSERT INTO warranties (warranty_number, serial_number_id, consumer_id, issued_by_id,
            issued_at, start_date, end_date, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		warranty.WarrantyNumber,
		warranty.SerialNumberID,
		warranty.ConsumerID,
		warranty.IssuedByID,
		warranty.IssuedAt,
		warranty.StartDate,
		warranty.EndDate,
		warranty.Status,
		warranty.Notes,
	).Scan(&warranty.ID, &warranty.CreatedAt, &warranty.UpdatedAt)
}

func (r *warrantyRepository) Update(ctx context.Context, warranty *domain.Warranty) error {
	const query = `
        UPDATE warranties SET consumer_id=$1, start_date=$2, end_date=$3, status=$4, notes=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		warranty.ConsumerID,
		warranty.StartDate,
		warranty.EndDate,
		warranty.Status,
		warranty.Notes,
		warranty.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *warrantyRepository) GetByID(ctx context.Context, id string) (*domain.Warranty, error) {
	query := fmt.Sprintf(`SELECT %s FROM warranties WHERE id=$1`, warrantyColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *warrantyRepository) GetByNumber(ctx context.Context, warrantyNumber string) (*domain.Warranty, error) {
	query := fmt.Sprintf(`SELECT %s FROM warranties WHERE warranty_number=$1`, warrantyColumns)
	return r.fetchSingle(ctx, query, warrantyNumber)
}

func (r *warrantyRepository) GetBySerial(ctx context.Context, serial string) (*domain.Warranty, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM warranties w
        WHERE w.serial_number_id = (SELECT id FROM battery_serial_numbers WHERE serial_number=$1)`,
		prefixColumns("w", warrantyColumns))
	return r.fetchSingle(ctx, query, serial)
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func (r *warrantyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Warranty, error) {
	var warranty domain.Warranty
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&warranty.ID,
		&warranty.WarrantyNumber,
		&warranty.SerialNumberID,
		&warranty.ConsumerID,
		&warranty.IssuedByID,
		&warranty.IssuedAt,
		&warranty.StartDate,
		&warranty.EndDate,
		&warranty.Status,
		&warranty.Notes,
		&warranty.CreatedAt,
		&warranty.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (r *warrantyRepository) ListWithFilter(ctx context.Context, filter WarrantyFilter) ([]domain.Warranty, error) {
	base := fmt.Sprintf(`SELECT %s FROM warranties`, warrantyColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ConsumerID != nil {
		args = append(args, *filter.ConsumerID)
		clauses = append(clauses, fmt.Sprintf("consumer_id=$%d", len(args)))
	}
	if filter.IssuedByID != nil {
		args = append(args, *filter.IssuedByID)
		clauses = append(clauses, fmt.Sprintf("issued_by_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Warranty
	for rows.Next() {
		var warranty domain.Warranty
		if err := rows.Scan(
			&warranty.ID,
			&warranty.WarrantyNumber,
			&warranty.SerialNumberID,
			&warranty.ConsumerID,
			&warranty.IssuedByID,
			&warranty.IssuedAt,
			&warranty.StartDate,
			&warranty.EndDate,
			&warranty.Status,
			&warranty.Notes,
			&warranty.CreatedAt,
			&warranty.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, warranty)
	}
	return result, rows.Err()
}
