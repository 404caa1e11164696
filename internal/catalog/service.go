package catalog

import (
	"context"
	"fmt"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/realtime"
)

// OrganizationDirectory resolves organizations for ownership checks and for
// addressing public fanout by domain.
type OrganizationDirectory interface {
	Get(ctx context.Context, orgID string) (*domain.Organization, error)
}

// Service implements the catalog business logic.
type Service struct {
	repo      Repository
	orgs      OrganizationDirectory
	publisher realtime.Publisher
}

// NewService creates a new catalog service.
func NewService(repo Repository, orgs OrganizationDirectory, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, orgs: orgs, publisher: publisher}
}

// CreateServiceInput holds data for creating a service.
type CreateServiceInput struct {
	Name        string
	Description string
	Group       string
	IsPublic    *bool
	Status      domain.ServiceStatus
}

// UpdateServiceInput holds data for updating a service. Nil fields are left
// unchanged; status changes go through SetStatus so history stays complete.
type UpdateServiceInput struct {
	Name        *string
	Description *string
	Group       *string
	IsPublic    *bool
	Order       *int
}

// StatusChangedPayload is the fanout payload emitted whenever a service
// status changes, whether directly or through an incident cascade.
type StatusChangedPayload struct {
	ServiceID string               `json:"service_id"`
	Status    domain.ServiceStatus `json:"status"`
}

// Create adds a service to an organization. New services land at the end of
// the display order.
func (s *Service) Create(ctx context.Context, orgID string, input CreateServiceInput) (*domain.Service, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.ServiceStatusOperational
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	group := input.Group
	if group == "" {
		group = domain.DefaultServiceGroup
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	count, err := s.repo.CountServices(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	service := &domain.Service{
		OrganizationID: org.ID,
		Name:           input.Name,
		Description:    input.Description,
		Status:         status,
		Group:          group,
		IsPublic:       isPublic,
		Order:          count,
	}
	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, err
	}

	s.publisher.Publish(realtime.Organization(org.ID), realtime.EventServiceCreated, service)

	return service, nil
}

// List returns the organization's services sorted for display.
func (s *Service) List(ctx context.Context, orgID string) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, orgID, ServiceFilter{})
}

// ListPublic returns the organization's public services sorted for display.
func (s *Service) ListPublic(ctx context.Context, orgID string) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, orgID, ServiceFilter{PublicOnly: true})
}

// Get retrieves one service of an organization.
func (s *Service) Get(ctx context.Context, orgID, serviceID string) (*domain.Service, error) {
	return s.repo.GetService(ctx, orgID, serviceID)
}

// Update applies partial changes to a service's descriptive fields.
func (s *Service) Update(ctx context.Context, orgID, serviceID string, input UpdateServiceInput) (*domain.Service, error) {
	service, err := s.repo.GetService(ctx, orgID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Group != nil {
		service.Group = *input.Group
		if service.Group == "" {
			service.Group = domain.DefaultServiceGroup
		}
	}
	if input.IsPublic != nil {
		service.IsPublic = *input.IsPublic
	}
	if input.Order != nil {
		service.Order = *input.Order
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, err
	}

	s.publisher.Publish(realtime.Organization(orgID), realtime.EventServiceUpdated, service)

	return service, nil
}

// SetStatus changes a service's status, records one history entry and fans
// the change out to the organization channel and, for public services, the
// public channel. Incident cascades apply each step through here so direct
// and cascaded changes behave identically.
func (s *Service) SetStatus(ctx context.Context, orgID, serviceID string, status domain.ServiceStatus) (*domain.Service, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	service, err := s.repo.GetService(ctx, orgID, serviceID)
	if err != nil {
		return nil, err
	}

	service.Status = status
	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, err
	}

	// Duration is recorded as 0; it is not backfilled on the next transition.
	entry := &domain.ServiceHistoryEntry{
		ServiceID: service.ID,
		Status:    status,
	}
	if err := s.repo.CreateHistoryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("record status history: %w", err)
	}

	payload := StatusChangedPayload{ServiceID: service.ID, Status: status}
	s.publisher.Publish(realtime.Organization(org.ID), realtime.EventStatusUpdate, payload)
	if service.IsPublic {
		s.publisher.Publish(realtime.Public(org.Domain), realtime.EventStatusUpdate, payload)
	}

	return service, nil
}

// Delete removes a service and fans the removal out to the organization.
func (s *Service) Delete(ctx context.Context, orgID, serviceID string) error {
	if err := s.repo.DeleteService(ctx, orgID, serviceID); err != nil {
		return err
	}

	s.publisher.Publish(realtime.Organization(orgID), realtime.EventServiceDeleted, map[string]string{"id": serviceID})

	return nil
}

// History returns the most recent status changes of a service, newest first.
func (s *Service) History(ctx context.Context, orgID, serviceID string, limit int) ([]domain.ServiceHistoryEntry, error) {
	if _, err := s.repo.GetService(ctx, orgID, serviceID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListHistory(ctx, serviceID, limit)
}
