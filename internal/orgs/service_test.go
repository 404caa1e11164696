package orgs

import (
	"context"
	"strconv"
	"testing"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory orgs.Repository.
type fakeRepository struct {
	nextID  int
	orgs    map[string]*domain.Organization
	members map[string]*domain.TeamMember
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orgs:    make(map[string]*domain.Organization),
		members: make(map[string]*domain.TeamMember),
	}
}

func (f *fakeRepository) id() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeRepository) CreateOrganization(_ context.Context, org *domain.Organization) error {
	for _, existing := range f.orgs {
		if existing.Domain == org.Domain {
			return ErrDomainTaken
		}
	}
	org.ID = f.id()
	clone := *org
	f.orgs[org.ID] = &clone
	return nil
}

func (f *fakeRepository) GetOrganization(_ context.Context, id string) (*domain.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	clone := *org
	return &clone, nil
}

func (f *fakeRepository) GetOrganizationByDomain(_ context.Context, orgDomain string) (*domain.Organization, error) {
	for _, org := range f.orgs {
		if org.Domain == orgDomain {
			clone := *org
			return &clone, nil
		}
	}
	return nil, ErrOrganizationNotFound
}

func (f *fakeRepository) UpdateOrganization(_ context.Context, org *domain.Organization) error {
	if _, ok := f.orgs[org.ID]; !ok {
		return ErrOrganizationNotFound
	}
	clone := *org
	f.orgs[org.ID] = &clone
	return nil
}

func (f *fakeRepository) DeleteOrganization(_ context.Context, id string) error {
	if _, ok := f.orgs[id]; !ok {
		return ErrOrganizationNotFound
	}
	delete(f.orgs, id)
	for memberID, member := range f.members {
		if member.OrganizationID == id {
			delete(f.members, memberID)
		}
	}
	return nil
}

func (f *fakeRepository) CreateMember(_ context.Context, member *domain.TeamMember) error {
	for _, existing := range f.members {
		if existing.OrganizationID == member.OrganizationID && existing.Email == member.Email {
			return ErrMemberExists
		}
	}
	member.ID = f.id()
	clone := *member
	f.members[member.ID] = &clone
	return nil
}

func (f *fakeRepository) GetMember(_ context.Context, id string) (*domain.TeamMember, error) {
	member, ok := f.members[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	clone := *member
	return &clone, nil
}

func (f *fakeRepository) GetMemberByUser(_ context.Context, userID, orgID string) (*domain.TeamMember, error) {
	for _, member := range f.members {
		if member.OrganizationID == orgID && member.UserID != nil && *member.UserID == userID {
			clone := *member
			return &clone, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (f *fakeRepository) GetMemberByEmail(_ context.Context, orgID, email string) (*domain.TeamMember, error) {
	for _, member := range f.members {
		if member.OrganizationID == orgID && member.Email == email {
			clone := *member
			return &clone, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (f *fakeRepository) GetMemberByInviteToken(_ context.Context, token string) (*domain.TeamMember, error) {
	for _, member := range f.members {
		if member.InviteToken != nil && *member.InviteToken == token {
			clone := *member
			return &clone, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (f *fakeRepository) ListMembers(_ context.Context, orgID string) ([]domain.TeamMember, error) {
	result := make([]domain.TeamMember, 0)
	for _, member := range f.members {
		if member.OrganizationID == orgID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (f *fakeRepository) ListMembershipsForUser(_ context.Context, userID string) ([]Membership, error) {
	result := make([]Membership, 0)
	for _, member := range f.members {
		if member.UserID == nil || *member.UserID != userID || !member.InviteAccepted {
			continue
		}
		org, ok := f.orgs[member.OrganizationID]
		if !ok {
			continue
		}
		result = append(result, Membership{Organization: *org, Role: member.Role})
	}
	return result, nil
}

func (f *fakeRepository) UpdateMember(_ context.Context, member *domain.TeamMember) error {
	if _, ok := f.members[member.ID]; !ok {
		return ErrMemberNotFound
	}
	clone := *member
	f.members[member.ID] = &clone
	return nil
}

func (f *fakeRepository) DeleteMember(_ context.Context, id string) error {
	if _, ok := f.members[id]; !ok {
		return ErrMemberNotFound
	}
	delete(f.members, id)
	return nil
}

var creator = domain.Actor{ID: "user-1", Email: "owner@example.com", Name: "Owner"}

func TestCreateOrganization(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{
		Name:   "Acme",
		Domain: "ACME.Example.Com",
	}, creator)
	require.NoError(t, err)

	assert.Equal(t, "acme.example.com", org.Domain)
	assert.Equal(t, domain.DefaultBrandColor, org.BrandColor)
	assert.Equal(t, "UTC", org.Settings.Timezone)
	assert.True(t, org.Settings.NotificationsEnabled)

	// Creator becomes the first admin without an invitation round trip.
	member, err := repo.GetMemberByUser(context.Background(), creator.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)
	assert.True(t, member.InviteAccepted)
	assert.Nil(t, member.InviteToken)
}

func TestCreateOrganization_DomainTaken(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	// Domain uniqueness is case-insensitive.
	_, err = svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Other", Domain: "Acme.IO"}, creator)
	assert.ErrorIs(t, err, ErrDomainTaken)
}

func TestInviteMember(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	member, err := svc.InviteMember(context.Background(), org.ID, InviteMemberInput{
		Email: "New.Person@Example.com",
		Name:  "New Person",
		Role:  domain.RoleEditor,
	})
	require.NoError(t, err)

	assert.Equal(t, "new.person@example.com", member.Email)
	assert.False(t, member.InviteAccepted)
	assert.Nil(t, member.UserID)
	require.NotNil(t, member.InviteToken)
	assert.NotEmpty(t, *member.InviteToken)

	// Same email again, regardless of case, is a conflict.
	_, err = svc.InviteMember(context.Background(), org.ID, InviteMemberInput{
		Email: "new.person@example.com",
		Name:  "New Person",
		Role:  domain.RoleViewer,
	})
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestAcceptInvite_ExistingMember(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	// The creator already holds a membership; a second invite sent to a
	// different email of theirs must not produce a second row.
	invited, err := svc.InviteMember(context.Background(), org.ID, InviteMemberInput{
		Email: "owner.alias@example.com",
		Name:  "Owner",
		Role:  domain.RoleViewer,
	})
	require.NoError(t, err)

	_, err = svc.AcceptInvite(context.Background(), *invited.InviteToken, domain.Actor{ID: creator.ID, Email: "owner.alias@example.com"})
	assert.ErrorIs(t, err, ErrMemberExists)

	members, err := repo.ListMembers(context.Background(), org.ID)
	require.NoError(t, err)
	accepted := 0
	for _, m := range members {
		if m.UserID != nil && *m.UserID == creator.ID {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestAcceptInvite(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	invited, err := svc.InviteMember(context.Background(), org.ID, InviteMemberInput{
		Email: "new@example.com",
		Name:  "New Person",
		Role:  domain.RoleEditor,
	})
	require.NoError(t, err)
	token := *invited.InviteToken

	t.Run("wrong email", func(t *testing.T) {
		_, err := svc.AcceptInvite(context.Background(), token, domain.Actor{ID: "user-9", Email: "other@example.com"})
		assert.ErrorIs(t, err, ErrInviteEmailMismatch)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.AcceptInvite(context.Background(), "no-such-token", domain.Actor{ID: "user-2", Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("success binds user and consumes token", func(t *testing.T) {
		accepted, err := svc.AcceptInvite(context.Background(), token, domain.Actor{ID: "user-2", Email: "NEW@example.com"})
		require.NoError(t, err)

		assert.True(t, accepted.InviteAccepted)
		require.NotNil(t, accepted.UserID)
		assert.Equal(t, "user-2", *accepted.UserID)
		assert.Nil(t, accepted.InviteToken)

		// Token is single-use.
		_, err = svc.AcceptInvite(context.Background(), token, domain.Actor{ID: "user-2", Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrInviteNotFound)
	})
}

func TestUpdateMemberRole_SelfGuard(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	self, err := repo.GetMemberByUser(context.Background(), creator.ID, org.ID)
	require.NoError(t, err)

	_, err = svc.UpdateMemberRole(context.Background(), org.ID, self.ID, domain.RoleViewer, creator.ID)
	assert.ErrorIs(t, err, ErrOwnRole)

	err = svc.RemoveMember(context.Background(), org.ID, self.ID, creator.ID)
	assert.ErrorIs(t, err, ErrOwnRemove)
}

func TestUpdateMemberRole_WrongOrganization(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	orgA, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "A", Domain: "a.io"}, creator)
	require.NoError(t, err)
	orgB, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "B", Domain: "b.io"}, domain.Actor{ID: "user-2", Email: "b@example.com"})
	require.NoError(t, err)

	memberA, err := repo.GetMemberByUser(context.Background(), creator.ID, orgA.ID)
	require.NoError(t, err)

	// A member id from another organization reads as missing.
	_, err = svc.UpdateMemberRole(context.Background(), orgB.ID, memberA.ID, domain.RoleViewer, "user-2")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestCanAccess(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Acme", Domain: "acme.io"}, creator)
	require.NoError(t, err)

	invited, err := svc.InviteMember(context.Background(), org.ID, InviteMemberInput{
		Email: "viewer@example.com",
		Name:  "Viewer",
		Role:  domain.RoleViewer,
	})
	require.NoError(t, err)

	t.Run("admin passes every threshold", func(t *testing.T) {
		assert.NoError(t, svc.CanAccess(context.Background(), creator.ID, org.ID, domain.RoleViewer))
		assert.NoError(t, svc.CanAccess(context.Background(), creator.ID, org.ID, domain.RoleAdmin))
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		err := svc.CanAccess(context.Background(), "stranger", org.ID, domain.RoleViewer)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("pending invite does not grant access", func(t *testing.T) {
		err := svc.CanAccess(context.Background(), "user-3", org.ID, domain.RoleViewer)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("viewer cannot pass editor threshold", func(t *testing.T) {
		_, err := svc.AcceptInvite(context.Background(), *invited.InviteToken, domain.Actor{ID: "user-3", Email: "viewer@example.com"})
		require.NoError(t, err)

		assert.NoError(t, svc.CanAccess(context.Background(), "user-3", org.ID, domain.RoleViewer))
		err = svc.CanAccess(context.Background(), "user-3", org.ID, domain.RoleEditor)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
