package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ErrStatusConflict signals that a transition lost the race: the claim's
// status no longer matched the status the caller validated against.
var ErrStatusConflict = errors.New("claim status changed concurrently")

// ClaimFilter captures claim listing parameters.
type ClaimFilter struct {
	ConsumerID   *string
	AssignedToID *string
	IssuedByID   *string
	Statuses     []domain.ClaimStatus
	Limit        int
	Offset       int
}

// ClaimRepository encapsulates warranty claim persistence.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.WarrantyClaim) error
	GetByID(ctx context.Context, id string) (*domain.WarrantyClaim, error)
	ListWithFilter(ctx context.Context, filter ClaimFilter) ([]domain.WarrantyClaim, error)
	ApplyTransition(ctx context.Context, claim *domain.WarrantyClaim, from domain.ClaimStatus, entry *domain.ClaimStatusHistory) error
}

type claimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository instantiates the repository.
func NewClaimRepository(pool *pgxpool.Pool) ClaimRepository {
	return &claimRepository{pool: pool}
}

func (r *claimRepository) Create(ctx context.Context, claim *domain.WarrantyClaim) error {
	const query = `
        INSERT INTO warranty_claims (warranty_id, consumer_id, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		claim.WarrantyID,
		claim.ConsumerID,
		claim.Description,
		claim.Status,
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*domain.WarrantyClaim, error) {
	const query = `
        SELECT id, warranty_id, consumer_id, description, status, assigned_to_id, reviewed_by_id,
               review_notes, resolution_date, created_at, updated_at
        FROM warranty_claims WHERE id=$1`
	var claim domain.WarrantyClaim
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&claim.ID,
		&claim.WarrantyID,
		&claim.ConsumerID,
		&claim.Description,
		&claim.Status,
		&claim.AssignedToID,
		&claim.ReviewedByID,
		&claim.ReviewNotes,
		&claim.ResolutionDate,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) ListWithFilter(ctx context.Context, filter ClaimFilter) ([]domain.WarrantyClaim, error) {
	base := `SELECT c.id, c.warranty_id, c.consumer_id, c.description, c.status, c.assigned_to_id,
                    c.reviewed_by_id, c.review_notes, c.resolution_date, c.created_at, c.updated_at
             FROM warranty_claims c`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.IssuedByID != nil {
		base += " JOIN warranties w ON w.id = c.warranty_id"
		args = append(args, *filter.IssuedByID)
		clauses = append(clauses, fmt.Sprintf("w.issued_by_id=$%d", len(args)))
	}
	if filter.ConsumerID != nil {
		args = append(args, *filter.ConsumerID)
		clauses = append(clauses, fmt.Sprintf("c.consumer_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("c.assigned_to_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("c.status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WarrantyClaim
	for rows.Next() {
		var claim domain.WarrantyClaim
		if err := rows.Scan(
			&claim.ID,
			&claim.WarrantyID,
			&claim.ConsumerID,
			&claim.Description,
			&claim.Status,
			&claim.AssignedToID,
			&claim.ReviewedByID,
			&claim.ReviewNotes,
			&claim.ResolutionDate,
			&claim.CreatedAt,
			&claim.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	return result, rows.Err()
}

// ApplyTransition writes the new status and the ledger row in a single
// transaction. The UPDATE is a compare-and-swap on the status the caller
// validated against: when a concurrent transition won, zero rows match
// and ErrStatusConflict is returned with nothing written.
func (r *claimRepository) ApplyTransition(ctx context.Context, claim *domain.WarrantyClaim, from domain.ClaimStatus, entry *domain.ClaimStatusHistory) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const update = `
        UPDATE warranty_claims
        SET status=$1, assigned_to_id=$2, reviewed_by_id=$3, review_notes=$4,
            resolution_date=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7`
	cmd, err := tx.Exec(ctx, update,
		claim.Status,
		claim.AssignedToID,
		claim.ReviewedByID,
		claim.ReviewNotes,
		claim.ResolutionDate,
		claim.ID,
		from,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}

	const insert = `
        INSERT INTO warranty_claim_status_history (claim_id, from_status, to_status, changed_by_id, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		entry.ClaimID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ChangedByID,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
