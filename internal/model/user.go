// Package model defines domain entities for the application.
package model

import "time"

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleUser, RoleAdmin}

// IsValidRole reports whether role is a known role value.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Document is a piece of uploaded paperwork attached to a user.
// Only the metadata is stored here; the file itself lives in external
// storage addressed by Reference.
type Document struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
}

// User represents a registered account.
type User struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"` // Never serialize
	Role           string     `json:"role"`
	Pets           []string   `json:"pets"`
	Documents      []Document `json:"documents,omitempty"`
	LastConnection time.Time  `json:"last_connection"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity holds the verified caller identity derived from a token.
// It is injected into the request context by the auth middleware,
// scoped to the request, and never persisted.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin returns true if the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
