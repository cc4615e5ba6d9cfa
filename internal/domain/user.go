package domain

import "time"

// Role enumerates the account roles on the platform.
type Role string

const (
	RoleRegular  Role = "REGULAR"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether the role is a known account role.
func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// User is the identity record. Role is immutable after creation.
// Providers are created inactive and stay so until an admin approves
// their profile.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
