package dto

import "time"

// ServicePayload is the create/update body for a catalog service. The
// length and cost rules live in the catalog service so API and future
// callers share one rule set.
type ServicePayload struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	Cost        float64 `json:"cost" validate:"required,gt=0"`
}

// ServiceResponse is the public shape of a catalog service.
type ServiceResponse struct {
	ID          string        `json:"id"`
	ProviderID  string        `json:"provider_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Cost        float64       `json:"cost"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Provider    *UserResponse `json:"provider,omitempty"`
}
