package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/pkg/ctxlog"
	"github.com/bissquit/statusdeck/internal/realtime"
)

// OrganizationDirectory resolves organizations for ownership checks and for
// addressing public fanout by domain.
type OrganizationDirectory interface {
	Get(ctx context.Context, orgID string) (*domain.Organization, error)
}

// ServiceCatalog is the slice of the catalog the incident lifecycle needs:
// existence checks for affected services, and the single entry point for
// status changes so cascaded changes record history and fan out exactly
// like direct ones.
type ServiceCatalog interface {
	Get(ctx context.Context, orgID, serviceID string) (*domain.Service, error)
	SetStatus(ctx context.Context, orgID, serviceID string, status domain.ServiceStatus) (*domain.Service, error)
}

// Service implements the incident lifecycle business logic.
type Service struct {
	repo      Repository
	orgs      OrganizationDirectory
	catalog   ServiceCatalog
	publisher realtime.Publisher
}

// NewService creates a new incident service.
func NewService(repo Repository, orgs OrganizationDirectory, catalog ServiceCatalog, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, orgs: orgs, catalog: catalog, publisher: publisher}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Title              string
	Description        string
	Type               domain.IncidentType
	Status             domain.IncidentStatus
	Impact             domain.Impact
	AffectedServiceIDs []string
	IsPublic           *bool
	ScheduledFor       *time.Time
	ScheduledUntil     *time.Time
}

// UpdateIncidentInput holds data for updating an incident's descriptive
// fields. Status changes go through AppendUpdate, never through here.
type UpdateIncidentInput struct {
	Title              *string
	Description        *string
	Impact             *domain.Impact
	AffectedServiceIDs []string
	IsPublic           *bool
	ScheduledFor       *time.Time
	ScheduledUntil     *time.Time
}

// AppendUpdateInput holds data for appending an incident update.
type AppendUpdateInput struct {
	Message  string
	Status   domain.IncidentStatus
	IsPublic *bool
}

// IncidentDetail is an incident together with its update log.
type IncidentDetail struct {
	domain.Incident
	Updates []domain.IncidentUpdate `json:"updates"`
}

// Page is one page of a filtered incident listing.
type Page struct {
	Incidents []domain.Incident `json:"incidents"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Pages     int               `json:"pages"`
}

// UpdatePayload is the fanout payload for appended incident updates.
type UpdatePayload struct {
	Incident *domain.Incident       `json:"incident"`
	Update   *domain.IncidentUpdate `json:"update"`
}

// Create opens an incident or maintenance window. It persists the incident,
// synthesizes the initial update from the incident's description, applies the
// impact cascade to affected services and fans everything out: one
// status-update per cascaded service first, then incident-created.
func (s *Service) Create(ctx context.Context, orgID string, input CreateIncidentInput, actor domain.Actor) (*domain.Incident, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, ErrInvalidType
	}
	status := input.Status
	if status == "" {
		status = domain.IncidentStatusInvestigating
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	impact := input.Impact
	if impact == "" {
		impact = domain.ImpactNone
	}
	if !impact.IsValid() {
		return nil, ErrInvalidImpact
	}

	// Unknown affected services fail the whole request before any write.
	for _, serviceID := range input.AffectedServiceIDs {
		if _, err := s.catalog.Get(ctx, orgID, serviceID); err != nil {
			return nil, err
		}
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	incident := &domain.Incident{
		OrganizationID:     org.ID,
		Title:              input.Title,
		Description:        input.Description,
		Type:               input.Type,
		Status:             status,
		Impact:             impact,
		AffectedServiceIDs: input.AffectedServiceIDs,
		IsPublic:           isPublic,
		CreatedBy:          actor.ID,
	}
	if incident.Type == domain.IncidentTypeMaintenance {
		incident.ScheduledFor = input.ScheduledFor
		incident.ScheduledUntil = input.ScheduledUntil
	}

	if err := s.repo.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}

	initial := &domain.IncidentUpdate{
		IncidentID: incident.ID,
		Message:    incident.Description,
		Status:     incident.Status,
		IsPublic:   incident.IsPublic,
		CreatedBy:  actor.ID,
	}
	if err := s.repo.CreateUpdate(ctx, initial); err != nil {
		return nil, fmt.Errorf("create initial update: %w", err)
	}

	s.applyCascade(ctx, orgID, CascadeOnCreate(incident))

	s.publisher.Publish(realtime.Organization(org.ID), realtime.EventIncidentCreated, incident)
	if incident.IsPublic {
		s.publisher.Publish(realtime.Public(org.Domain), realtime.EventIncidentCreated, incident)
	}

	return incident, nil
}

// List returns one page of the organization's incidents, newest first.
func (s *Service) List(ctx context.Context, orgID string, filter Filter) (*Page, error) {
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, ErrInvalidType
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	incidents, total, err := s.repo.ListIncidents(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Incidents: incidents,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
		Pages:     (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// Get retrieves an incident together with its full update log.
func (s *Service) Get(ctx context.Context, orgID, incidentID string) (*IncidentDetail, error) {
	incident, err := s.repo.GetIncident(ctx, orgID, incidentID)
	if err != nil {
		return nil, err
	}

	updates, err := s.repo.ListUpdates(ctx, incidentID, false)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}

	return &IncidentDetail{Incident: *incident, Updates: updates}, nil
}

// Update applies partial changes to an incident's descriptive fields. The
// scheduled window is only applied to maintenance.
func (s *Service) Update(ctx context.Context, orgID, incidentID string, input UpdateIncidentInput) (*domain.Incident, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	incident, err := s.repo.GetIncident(ctx, orgID, incidentID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Description != nil {
		incident.Description = *input.Description
	}
	if input.Impact != nil {
		if !input.Impact.IsValid() {
			return nil, ErrInvalidImpact
		}
		incident.Impact = *input.Impact
	}
	if input.AffectedServiceIDs != nil {
		for _, serviceID := range input.AffectedServiceIDs {
			if _, err := s.catalog.Get(ctx, orgID, serviceID); err != nil {
				return nil, err
			}
		}
		incident.AffectedServiceIDs = input.AffectedServiceIDs
	}
	if input.IsPublic != nil {
		incident.IsPublic = *input.IsPublic
	}
	if incident.Type == domain.IncidentTypeMaintenance {
		if input.ScheduledFor != nil {
			incident.ScheduledFor = input.ScheduledFor
		}
		if input.ScheduledUntil != nil {
			incident.ScheduledUntil = input.ScheduledUntil
		}
	}

	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	s.publisher.Publish(realtime.Organization(org.ID), realtime.EventIncidentUpdated, incident)
	if incident.IsPublic {
		s.publisher.Publish(realtime.Public(org.Domain), realtime.EventIncidentUpdated, incident)
	}

	return incident, nil
}

// AppendUpdate appends an entry to the incident's update log and moves the
// incident to the entry's status. The first transition to resolved stamps
// resolved_at and reverts affected services to operational; resolving again
// keeps the original timestamp and does not cascade twice.
func (s *Service) AppendUpdate(ctx context.Context, orgID, incidentID string, input AppendUpdateInput, actor domain.Actor) (*IncidentDetail, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	incident, err := s.repo.GetIncident(ctx, orgID, incidentID)
	if err != nil {
		return nil, err
	}

	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	isPublic := incident.IsPublic
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	update := &domain.IncidentUpdate{
		IncidentID: incident.ID,
		Message:    input.Message,
		Status:     input.Status,
		IsPublic:   isPublic,
		CreatedBy:  actor.ID,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, err
	}

	wasResolved := incident.ResolvedAt != nil
	incident.Status = input.Status
	if input.Status == domain.IncidentStatusResolved && incident.ResolvedAt == nil {
		now := time.Now().UTC()
		incident.ResolvedAt = &now
	}
	if err := s.repo.UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}

	if input.Status == domain.IncidentStatusResolved && !wasResolved {
		s.applyCascade(ctx, orgID, CascadeOnResolve(incident))
	}

	payload := UpdatePayload{Incident: incident, Update: update}
	s.publisher.Publish(realtime.Organization(org.ID), realtime.EventIncidentUpdate, payload)
	if update.IsPublic {
		s.publisher.Publish(realtime.Public(org.Domain), realtime.EventIncidentUpdate, payload)
	}

	updates, err := s.repo.ListUpdates(ctx, incidentID, false)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}

	return &IncidentDetail{Incident: *incident, Updates: updates}, nil
}

// Delete removes an incident and its update log.
func (s *Service) Delete(ctx context.Context, orgID, incidentID string) error {
	if err := s.repo.DeleteIncident(ctx, orgID, incidentID); err != nil {
		return err
	}

	s.publisher.Publish(realtime.Organization(orgID), realtime.EventIncidentDeleted, map[string]string{"id": incidentID})

	return nil
}

// applyCascade applies each status change in order. A failing step is logged
// and skipped; changes already applied stay applied.
func (s *Service) applyCascade(ctx context.Context, orgID string, changes []StatusChange) {
	for _, change := range changes {
		if _, err := s.catalog.SetStatus(ctx, orgID, change.ServiceID, change.Status); err != nil {
			ctxlog.Warn(ctx, "cascade step failed",
				"service_id", change.ServiceID,
				"status", change.Status,
				"error", err,
			)
		}
	}
}
