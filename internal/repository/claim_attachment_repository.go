package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ClaimAttachmentRepository stores claim attachment metadata. Attachments
// are accepted only when the claim is filed.
type ClaimAttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.ClaimAttachment) error
	ListByClaim(ctx context.Context, claimID string) ([]domain.ClaimAttachment, error)
}

type claimAttachmentRepository struct {
	pool *pgxpool.Pool
}

// NewClaimAttachmentRepository builds the repository.
func NewClaimAttachmentRepository(pool *pgxpool.Pool) ClaimAttachmentRepository {
	return &claimAttachmentRepository{pool: pool}
}

func (r *claimAttachmentRepository) Create(ctx context.Context, attachment *domain.ClaimAttachment) error {
	const query = `
        INSERT INTO warranty_claim_attachments (claim_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.ClaimID,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *claimAttachmentRepository) ListByClaim(ctx context.Context, claimID string) ([]domain.ClaimAttachment, error) {
	const query = `
        SELECT id, claim_id, storage_key, file_name, mime_type, size_bytes, created_at
        FROM warranty_claim_attachments WHERE claim_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClaimAttachment
	for rows.Next() {
		var attachment domain.ClaimAttachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.ClaimID,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
