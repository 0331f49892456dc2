package dto

import (
	"time"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ClaimFileRequest payload for filing a claim.
type ClaimFileRequest struct {
	WarrantyID  string                   `json:"warranty_id"`
	Description string                   `json:"description"`
	Attachments []ClaimAttachmentRequest `json:"attachments,omitempty"`
}

// ClaimAttachmentRequest describes one uploaded file reference.
type ClaimAttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// ClaimAssignRequest payload for moving a claim under review.
type ClaimAssignRequest struct {
	AssigneeID string `json:"assignee_id"`
	Notes      string `json:"notes,omitempty"`
}

// ClaimReviewRequest payload for approve/reject.
type ClaimReviewRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ClaimResolveRequest payload for close-out.
type ClaimResolveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ClaimResponse is the API view of a claim.
type ClaimResponse struct {
	ID             string     `json:"id"`
	WarrantyID     string     `json:"warranty_id"`
	ConsumerID     string     `json:"consumer_id"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	AssignedToID   *string    `json:"assigned_to_id,omitempty"`
	ReviewedByID   *string    `json:"reviewed_by_id,omitempty"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	ResolutionDate *time.Time `json:"resolution_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ClaimAttachmentResponse is the API view of an attachment.
type ClaimAttachmentResponse struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClaimHistoryResponse is one ledger row.
type ClaimHistoryResponse struct {
	ID          string    `json:"id"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	ChangedByID *string   `json:"changed_by_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewClaimResponse maps the domain model.
func NewClaimResponse(claim *domain.WarrantyClaim) ClaimResponse {
	return ClaimResponse{
		ID:             claim.ID,
		WarrantyID:     claim.WarrantyID,
		ConsumerID:     claim.ConsumerID,
		Description:    claim.Description,
		Status:         string(claim.Status),
		AssignedToID:   claim.AssignedToID,
		ReviewedByID:   claim.ReviewedByID,
		ReviewNotes:    claim.ReviewNotes,
		ResolutionDate: claim.ResolutionDate,
		CreatedAt:      claim.CreatedAt,
		UpdatedAt:      claim.UpdatedAt,
	}
}

// NewClaimHistoryResponses maps ledger rows.
func NewClaimHistoryResponses(rows []domain.ClaimStatusHistory) []ClaimHistoryResponse {
	out := make([]ClaimHistoryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ClaimHistoryResponse{
			ID:          row.ID,
			FromStatus:  string(row.FromStatus),
			ToStatus:    string(row.ToStatus),
			ChangedByID: row.ChangedByID,
			Notes:       row.Notes,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}

// NewClaimAttachmentResponses maps attachments.
func NewClaimAttachmentResponses(rows []domain.ClaimAttachment) []ClaimAttachmentResponse {
	out := make([]ClaimAttachmentResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, ClaimAttachmentResponse{
			ID:         row.ID,
			StorageKey: row.StorageKey,
			FileName:   row.FileName,
			MimeType:   row.MimeType,
			SizeBytes:  row.SizeBytes,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out
}
