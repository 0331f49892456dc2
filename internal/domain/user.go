package domain

import "time"

// UserTier enumerates the trust tiers of platform accounts.
type UserTier string

const (
	TierAdmin      UserTier = "ADMIN"
	TierWholesaler UserTier = "WHOLESALER"
	TierConsumer   UserTier = "CONSUMER"
)

// User is the domain model for all platform accounts: manufacturer
// admins, wholesalers, and consumers.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        *string
	Phone        *string
	PasswordHash string
	Tier         UserTier
	CompanyName  *string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last names for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
