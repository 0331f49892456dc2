package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ClaimHistoryRepository reads the append-only status ledger. Rows are
// written exclusively by ClaimRepository.ApplyTransition; nothing ever
// updates or deletes them.
type ClaimHistoryRepository interface {
	ListByClaim(ctx context.Context, claimID string) ([]domain.ClaimStatusHistory, error)
}

type claimHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewClaimHistoryRepository builds the repository.
func NewClaimHistoryRepository(pool *pgxpool.Pool) ClaimHistoryRepository {
	return &claimHistoryRepository{pool: pool}
}

// ListByClaim returns ledger rows newest-first.
func (r *claimHistoryRepository) ListByClaim(ctx context.Context, claimID string) ([]domain.ClaimStatusHistory, error) {
	const query = `
        SELECT id, claim_id, from_status, to_status, changed_by_id, notes, created_at
        FROM warranty_claim_status_history
        WHERE claim_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClaimStatusHistory
	for rows.Next() {
		var entry domain.ClaimStatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ClaimID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.ChangedByID,
			&entry.Notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
