package dto

import "time"

// CreateRequestRequest is the body for filing a service request.
type CreateRequestRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid4"`
	Message   string `json:"message"`
}

// RequestResponse is the public shape of a service request.
type RequestResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Service   *ServiceResponse `json:"service,omitempty"`
	Requester *UserResponse    `json:"requester,omitempty"`
	Provider  *UserResponse    `json:"provider,omitempty"`
}
