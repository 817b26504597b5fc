package domain

import "time"

// Role enumerates account roles. RoleUser is the registration default.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleUser  Role = "USER"
)

// ParseRole maps a request-supplied role name onto a known Role, defaulting
// to RoleUser for anything unrecognized or empty.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleStaff:
		return RoleStaff
	default:
		return RoleUser
	}
}

// User is the authenticatable account shared by all services. PasswordHash
// never leaves the repository/verifier boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Role         Role
	Active       bool
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
