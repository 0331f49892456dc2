package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// NotificationLogRepository persists delivery outcomes and backs the
// in-app notification feed.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.NotificationLog, error)
}

type notificationLogRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationLogRepository builds the repository.
func NewNotificationLogRepository(pool *pgxpool.Pool) NotificationLogRepository {
	return &notificationLogRepository{pool: pool}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *domain.NotificationLog) error {
	const query = `
        INSERT INTO notification_logs (recipient_id, channel, status, title, body, entity_type, entity_id, error_message)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		log.RecipientID,
		log.Channel,
		log.Status,
		log.Title,
		log.Body,
		log.EntityType,
		log.EntityID,
		log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *notificationLogRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.NotificationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, recipient_id, channel, status, title, body, entity_type, entity_id, error_message, created_at
        FROM notification_logs
        WHERE recipient_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationLog
	for rows.Next() {
		var log domain.NotificationLog
		if err := rows.Scan(
			&log.ID,
			&log.RecipientID,
			&log.Channel,
			&log.Status,
			&log.Title,
			&log.Body,
			&log.EntityType,
			&log.EntityID,
			&log.ErrorMessage,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
