package domain

import "time"

// Service is an offering owned by a provider user. Cost is always
// positive. Services with outstanding requests are soft-deleted via the
// IsActive flag, never hard-deleted.
type Service struct {
	ID          string
	ProviderID  string
	Name        string
	Description string
	Location    string
	Cost        float64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Provider is populated on joined reads.
	Provider *User
}
