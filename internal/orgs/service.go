package orgs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/google/uuid"
)

// Service implements organization and team business logic, including the
// access policy for every organization-scoped check.
type Service struct {
	repo Repository
}

// NewService creates a new organization service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateOrganizationInput holds data for creating an organization.
type CreateOrganizationInput struct {
	Name       string
	Domain     string
	Logo       string
	BrandColor string
}

// UpdateOrganizationInput holds data for updating an organization.
// Nil fields are left unchanged; Settings merge over the stored values.
type UpdateOrganizationInput struct {
	Name       *string
	Logo       *string
	BrandColor *string
	Settings   *domain.OrganizationSettings
}

// InviteMemberInput holds data for inviting a team member.
type InviteMemberInput struct {
	Email string
	Name  string
	Role  domain.Role
}

// CreateOrganization creates an organization and enrolls the creator as its
// first admin member.
func (s *Service) CreateOrganization(ctx context.Context, input CreateOrganizationInput, actor domain.Actor) (*domain.Organization, error) {
	orgDomain := domain.NormalizeDomain(input.Domain)

	if _, err := s.repo.GetOrganizationByDomain(ctx, orgDomain); err == nil {
		return nil, ErrDomainTaken
	} else if !errors.Is(err, ErrOrganizationNotFound) {
		return nil, fmt.Errorf("check domain: %w", err)
	}

	brandColor := input.BrandColor
	if brandColor == "" {
		brandColor = domain.DefaultBrandColor
	}

	org := &domain.Organization{
		Name:       input.Name,
		Domain:     orgDomain,
		Logo:       input.Logo,
		BrandColor: brandColor,
		Settings: domain.OrganizationSettings{
			Timezone:             "UTC",
			NotificationsEnabled: true,
		},
	}

	if err := s.repo.CreateOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	userID := actor.ID
	now := time.Now()
	member := &domain.TeamMember{
		OrganizationID: org.ID,
		UserID:         &userID,
		Email:          actor.Email,
		Name:           actor.Name,
		Role:           domain.RoleAdmin,
		InviteAccepted: true,
		LastActive:     &now,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("create admin member: %w", err)
	}

	return org, nil
}

// ListForActor returns the organizations the actor belongs to with their role.
func (s *Service) ListForActor(ctx context.Context, actorID string) ([]Membership, error) {
	return s.repo.ListMembershipsForUser(ctx, actorID)
}

// Get retrieves an organization by id.
func (s *Service) Get(ctx context.Context, orgID string) (*domain.Organization, error) {
	return s.repo.GetOrganization(ctx, orgID)
}

// GetByDomain retrieves an organization by its public domain slug.
func (s *Service) GetByDomain(ctx context.Context, orgDomain string) (*domain.Organization, error) {
	return s.repo.GetOrganizationByDomain(ctx, domain.NormalizeDomain(orgDomain))
}

// Update applies partial changes to an organization.
func (s *Service) Update(ctx context.Context, orgID string, input UpdateOrganizationInput) (*domain.Organization, error) {
	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Logo != nil {
		org.Logo = *input.Logo
	}
	if input.BrandColor != nil {
		org.BrandColor = *input.BrandColor
	}
	if input.Settings != nil {
		merged := org.Settings
		if input.Settings.Timezone != "" {
			merged.Timezone = input.Settings.Timezone
		}
		if input.Settings.PublicEmail != "" {
			merged.PublicEmail = input.Settings.PublicEmail
		}
		merged.NotificationsEnabled = input.Settings.NotificationsEnabled
		org.Settings = merged
	}

	if err := s.repo.UpdateOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return org, nil
}

// Delete removes an organization and everything it owns.
func (s *Service) Delete(ctx context.Context, orgID string) error {
	if _, err := s.repo.GetOrganization(ctx, orgID); err != nil {
		return err
	}
	return s.repo.DeleteOrganization(ctx, orgID)
}

// ListMembers returns the organization's team members.
func (s *Service) ListMembers(ctx context.Context, orgID string) ([]domain.TeamMember, error) {
	return s.repo.ListMembers(ctx, orgID)
}

// InviteMember invites a new member by email. The invite token is single-use
// and cleared on acceptance.
func (s *Service) InviteMember(ctx context.Context, orgID string, input InviteMemberInput) (*domain.TeamMember, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.GetMemberByEmail(ctx, orgID, email); err == nil {
		return nil, ErrMemberExists
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, fmt.Errorf("check member email: %w", err)
	}

	token := uuid.NewString()
	member := &domain.TeamMember{
		OrganizationID: orgID,
		Email:          email,
		Name:           input.Name,
		Role:           input.Role,
		InviteAccepted: false,
		InviteToken:    &token,
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return member, nil
}

// AcceptInvite binds a pending invitation to the accepting actor.
func (s *Service) AcceptInvite(ctx context.Context, token string, actor domain.Actor) (*domain.TeamMember, error) {
	member, err := s.repo.GetMemberByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if member.InviteAccepted {
		return nil, ErrInviteNotFound
	}

	if !strings.EqualFold(member.Email, actor.Email) {
		return nil, ErrInviteEmailMismatch
	}

	// One membership per user per organization, whatever email the invite
	// was sent to.
	if _, err := s.repo.GetMemberByUser(ctx, actor.ID, member.OrganizationID); err == nil {
		return nil, ErrMemberExists
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, fmt.Errorf("check existing membership: %w", err)
	}

	userID := actor.ID
	now := time.Now()
	member.UserID = &userID
	member.InviteAccepted = true
	member.InviteToken = nil
	member.LastActive = &now

	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	return member, nil
}

// UpdateMemberRole changes a member's role. Actors cannot change their own.
func (s *Service) UpdateMemberRole(ctx context.Context, orgID, memberID string, role domain.Role, actorID string) (*domain.TeamMember, error) {
	member, err := s.memberInOrg(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}

	if member.UserID != nil && *member.UserID == actorID {
		return nil, ErrOwnRole
	}

	member.Role = role
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

// RemoveMember removes a member from the organization.
func (s *Service) RemoveMember(ctx context.Context, orgID, memberID, actorID string) error {
	member, err := s.memberInOrg(ctx, orgID, memberID)
	if err != nil {
		return err
	}

	if member.UserID != nil && *member.UserID == actorID {
		return ErrOwnRemove
	}

	return s.repo.DeleteMember(ctx, member.ID)
}

// CanAccess is the organization-scoped authorization check: the actor must be
// an accepted member whose role permits the minimum required role.
func (s *Service) CanAccess(ctx context.Context, actorID, orgID string, min domain.Role) error {
	member, err := s.repo.GetMemberByUser(ctx, actorID, orgID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("get membership: %w", err)
	}
	if !member.InviteAccepted {
		return ErrNotMember
	}
	if !member.Role.Permits(min) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) memberInOrg(ctx context.Context, orgID, memberID string) (*domain.TeamMember, error) {
	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.OrganizationID != orgID {
		return nil, ErrMemberNotFound
	}
	return member, nil
}
