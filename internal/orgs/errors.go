package orgs

import "errors"

// Domain errors surfaced to handlers.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrDomainTaken          = errors.New("domain already in use")

	ErrMemberNotFound      = errors.New("team member not found")
	ErrMemberExists        = errors.New("team member already exists")
	ErrInviteNotFound      = errors.New("invalid or expired invitation")
	ErrInviteEmailMismatch = errors.New("this invitation is for a different email address")

	ErrNotMember = errors.New("you are not a member of this organization")
	ErrForbidden = errors.New("insufficient permissions")
	ErrOwnRole   = errors.New("you cannot change your own role")
	ErrOwnRemove = errors.New("you cannot remove yourself from the organization")
)
