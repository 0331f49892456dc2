package domain

import "time"

// ClaimStatus enumerates warranty claim lifecycle states.
type ClaimStatus string

const (
	ClaimPending     ClaimStatus = "PENDING"
	ClaimUnderReview ClaimStatus = "UNDER_REVIEW"
	ClaimApproved    ClaimStatus = "APPROVED"
	ClaimRejected    ClaimStatus = "REJECTED"
	ClaimResolved    ClaimStatus = "RESOLVED"
)

// WarrantyClaim is a consumer-filed defect report against one warranty.
// Status moves only through the claim service's transition operation.
type WarrantyClaim struct {
	ID             string
	WarrantyID     string
	ConsumerID     string
	Description    string
	Status         ClaimStatus
	AssignedToID   *string
	ReviewedByID   *string
	ReviewNotes    string
	ResolutionDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClaimStatusHistory is one immutable ledger row per accepted transition.
type ClaimStatusHistory struct {
	ID          string
	ClaimID     string
	FromStatus  ClaimStatus
	ToStatus    ClaimStatus
	ChangedByID *string
	Notes       string
	CreatedAt   time.Time
}

// ClaimAttachment is a file the consumer supplied when filing the claim.
type ClaimAttachment struct {
	ID         string
	ClaimID    string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
