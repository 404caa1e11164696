package domain

import "time"

// Role is a team member's role within an organization.
type Role string

// Roles.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// rank orders roles for authorization checks. Comparison happens on explicit
// ranks, never on the role strings themselves.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Permits reports whether the role is allowed wherever min is allowed.
func (r Role) Permits(min Role) bool {
	return r.rank() >= min.rank()
}

// TeamMember links an external identity to an organization with a role.
// UserID is nil until the invitation is accepted; InviteToken is single-use
// and cleared on acceptance.
type TeamMember struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	UserID         *string    `json:"user_id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	InviteAccepted bool       `json:"invite_accepted"`
	InviteToken    *string    `json:"-"`
	LastActive     *time.Time `json:"last_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Actor identifies the authenticated caller as supplied by the external
// identity provider. The core trusts these claims as given.
type Actor struct {
	ID    string
	Email string
	Name  string
}
