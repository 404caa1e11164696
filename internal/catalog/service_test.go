package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/orgs"
	"github.com/bissquit/statusdeck/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory catalog.Repository.
type fakeRepository struct {
	nextID   int
	services map[string]*domain.Service
	history  []domain.ServiceHistoryEntry
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{services: make(map[string]*domain.Service)}
}

func (f *fakeRepository) CreateService(_ context.Context, service *domain.Service) error {
	f.nextID++
	service.ID = "svc-" + strconv.Itoa(f.nextID)
	clone := *service
	f.services[service.ID] = &clone
	return nil
}

func (f *fakeRepository) GetService(_ context.Context, orgID, id string) (*domain.Service, error) {
	service, ok := f.services[id]
	if !ok || service.OrganizationID != orgID {
		return nil, ErrServiceNotFound
	}
	clone := *service
	return &clone, nil
}

func (f *fakeRepository) ListServices(_ context.Context, orgID string, filter ServiceFilter) ([]domain.Service, error) {
	result := make([]domain.Service, 0)
	for _, service := range f.services {
		if service.OrganizationID != orgID {
			continue
		}
		if filter.PublicOnly && !service.IsPublic {
			continue
		}
		result = append(result, *service)
	}
	SortServices(result)
	return result, nil
}

func (f *fakeRepository) CountServices(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, service := range f.services {
		if service.OrganizationID == orgID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) UpdateService(_ context.Context, service *domain.Service) error {
	if _, ok := f.services[service.ID]; !ok {
		return ErrServiceNotFound
	}
	clone := *service
	f.services[service.ID] = &clone
	return nil
}

func (f *fakeRepository) DeleteService(_ context.Context, orgID, id string) error {
	service, ok := f.services[id]
	if !ok || service.OrganizationID != orgID {
		return ErrServiceNotFound
	}
	delete(f.services, id)
	return nil
}

func (f *fakeRepository) CreateHistoryEntry(_ context.Context, entry *domain.ServiceHistoryEntry) error {
	f.nextID++
	entry.ID = "hist-" + strconv.Itoa(f.nextID)
	f.history = append(f.history, *entry)
	return nil
}

func (f *fakeRepository) ListHistory(_ context.Context, serviceID string, limit int) ([]domain.ServiceHistoryEntry, error) {
	result := make([]domain.ServiceHistoryEntry, 0)
	for i := len(f.history) - 1; i >= 0 && len(result) < limit; i-- {
		if f.history[i].ServiceID == serviceID {
			result = append(result, f.history[i])
		}
	}
	return result, nil
}

// fakeOrgs resolves a single fixed organization.
type fakeOrgs struct {
	org domain.Organization
}

func (f *fakeOrgs) Get(_ context.Context, orgID string) (*domain.Organization, error) {
	if orgID != f.org.ID {
		return nil, orgs.ErrOrganizationNotFound
	}
	clone := f.org
	return &clone, nil
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	Audience realtime.Audience
	Event    string
	Payload  interface{}
}

func (p *recordingPublisher) Publish(audience realtime.Audience, event string, payload interface{}) {
	p.events = append(p.events, publishedEvent{Audience: audience, Event: event, Payload: payload})
}

func newTestService() (*Service, *fakeRepository, *recordingPublisher) {
	repo := newFakeRepository()
	pub := &recordingPublisher{}
	directory := &fakeOrgs{org: domain.Organization{ID: "org-1", Name: "Acme", Domain: "acme.io"}}
	return NewService(repo, directory, pub), repo, pub
}

func TestCreateService(t *testing.T) {
	svc, _, pub := newTestService()

	first, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	assert.Equal(t, domain.ServiceStatusOperational, first.Status)
	assert.Equal(t, domain.DefaultServiceGroup, first.Group)
	assert.True(t, first.IsPublic)
	assert.Equal(t, 0, first.Order)

	second, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "Web"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	require.Len(t, pub.events, 2)
	assert.Equal(t, realtime.Organization("org-1"), pub.events[0].Audience)
	assert.Equal(t, realtime.EventServiceCreated, pub.events[0].Event)
}

func TestCreateService_UnknownOrganization(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "org-404", CreateServiceInput{Name: "API"})
	assert.ErrorIs(t, err, orgs.ErrOrganizationNotFound)
}

func TestSetStatus(t *testing.T) {
	svc, repo, pub := newTestService()

	service, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "API"})
	require.NoError(t, err)
	pub.events = nil

	updated, err := svc.SetStatus(context.Background(), "org-1", service.ID, domain.ServiceStatusMajorOutage)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusMajorOutage, updated.Status)

	require.Len(t, repo.history, 1)
	assert.Equal(t, service.ID, repo.history[0].ServiceID)
	assert.Equal(t, domain.ServiceStatusMajorOutage, repo.history[0].Status)
	assert.Equal(t, 0, repo.history[0].Duration)

	// Public service fans out to both channels, organization first.
	require.Len(t, pub.events, 2)
	assert.Equal(t, realtime.Organization("org-1"), pub.events[0].Audience)
	assert.Equal(t, realtime.EventStatusUpdate, pub.events[0].Event)
	assert.Equal(t, realtime.Public("acme.io"), pub.events[1].Audience)
	assert.Equal(t, realtime.EventStatusUpdate, pub.events[1].Event)

	payload, ok := pub.events[0].Payload.(StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, service.ID, payload.ServiceID)
	assert.Equal(t, domain.ServiceStatusMajorOutage, payload.Status)
}

func TestSetStatus_PrivateServiceStaysOffPublicChannel(t *testing.T) {
	svc, _, pub := newTestService()

	private := false
	service, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "Internal", IsPublic: &private})
	require.NoError(t, err)
	pub.events = nil

	_, err = svc.SetStatus(context.Background(), "org-1", service.ID, domain.ServiceStatusDegraded)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.Organization("org-1"), pub.events[0].Audience)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	svc, repo, _ := newTestService()

	service, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "API"})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), "org-1", service.ID, "exploded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, repo.history)
}

func TestDeleteService(t *testing.T) {
	svc, _, pub := newTestService()

	service, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "API"})
	require.NoError(t, err)
	pub.events = nil

	require.NoError(t, svc.Delete(context.Background(), "org-1", service.ID))

	_, err = svc.Get(context.Background(), "org-1", service.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.EventServiceDeleted, pub.events[0].Event)
}

func TestUpdateService(t *testing.T) {
	svc, _, pub := newTestService()

	service, err := svc.Create(context.Background(), "org-1", CreateServiceInput{Name: "API"})
	require.NoError(t, err)
	pub.events = nil

	name := "Public API"
	group := "Core"
	updated, err := svc.Update(context.Background(), "org-1", service.ID, UpdateServiceInput{
		Name:  &name,
		Group: &group,
	})
	require.NoError(t, err)

	assert.Equal(t, "Public API", updated.Name)
	assert.Equal(t, "Core", updated.Group)
	assert.Equal(t, domain.ServiceStatusOperational, updated.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.EventServiceUpdated, pub.events[0].Event)
}
