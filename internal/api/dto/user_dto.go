package dto

import "time"

// RegisterRequest is the unified registration payload. Role selects the
// account kind; service_description is required for providers only and
// checked in the auth service.
type RegisterRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=8"`
	FirstName          string `json:"first_name" validate:"required"`
	LastName           string `json:"last_name" validate:"required"`
	Role               string `json:"role" validate:"required,oneof=REGULAR PROVIDER"`
	ServiceDescription string `json:"service_description"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest payload for token rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest payload for credential updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse carries the issued credential pair.
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse is the public shape of a provider application.
type ProfileResponse struct {
	ID                 string        `json:"id"`
	ServiceDescription string        `json:"service_description"`
	ApprovalStatus     string        `json:"approval_status"`
	ApprovedAt         *time.Time    `json:"approved_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	User               *UserResponse `json:"user,omitempty"`
}
