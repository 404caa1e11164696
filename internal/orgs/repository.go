package orgs

import (
	"context"

	"github.com/bissquit/statusdeck/internal/domain"
)

// Membership pairs an organization with the actor's role in it.
type Membership struct {
	Organization domain.Organization `json:"organization"`
	Role         domain.Role         `json:"role"`
}

// Repository defines the interface for organization and team member storage.
type Repository interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	GetOrganizationByDomain(ctx context.Context, orgDomain string) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, org *domain.Organization) error
	// DeleteOrganization removes the organization; owned services, incidents,
	// incident updates and team members are removed with it.
	DeleteOrganization(ctx context.Context, id string) error

	CreateMember(ctx context.Context, member *domain.TeamMember) error
	GetMember(ctx context.Context, id string) (*domain.TeamMember, error)
	GetMemberByUser(ctx context.Context, userID, orgID string) (*domain.TeamMember, error)
	GetMemberByEmail(ctx context.Context, orgID, email string) (*domain.TeamMember, error)
	GetMemberByInviteToken(ctx context.Context, token string) (*domain.TeamMember, error)
	ListMembers(ctx context.Context, orgID string) ([]domain.TeamMember, error)
	ListMembershipsForUser(ctx context.Context, userID string) ([]Membership, error)
	UpdateMember(ctx context.Context, member *domain.TeamMember) error
	DeleteMember(ctx context.Context, id string) error
}
