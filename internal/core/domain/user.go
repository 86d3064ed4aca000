package domain

import "time"

// Role is the closed set of account types. Authorization logic switches
// exhaustively on this type; there are no open-ended role strings.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleCompany Role = "company"
	RoleAgency  Role = "agency"
	RoleAdmin   Role = "admin"
)

// ParseRole converts an external string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleCompany, RoleAgency, RoleAdmin:
		return true
	}
	return false
}

// Business reports whether the role can own shifts (companies post their own
// shifts, agencies post on behalf of client companies).
func (r Role) Business() bool {
	return r == RoleCompany || r == RoleAgency
}

// User models an account in the marketplace. IDs are allocated sequentially
// by the persistence layer and never reused. PasswordHash is opaque to
// everything except the credential store and is never serialized.
//
// Accounts are deactivated, never deleted: an inactive user fails
// authentication but keeps its shift/application history intact.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
