// Package incidents implements the incident lifecycle: creation, the
// append-only update log, resolution and the status cascade onto affected
// services.
package incidents

import (
	"context"

	"github.com/bissquit/statusdeck/internal/domain"
)

// Filter narrows incident listings. Nil fields match everything.
type Filter struct {
	Type       *domain.IncidentType
	Status     *domain.IncidentStatus
	PublicOnly bool
	Resolved   *bool
	// ScheduledOnly restricts the listing to incidents with a scheduled
	// window and sorts it by scheduled_for ascending instead of newest
	// first.
	ScheduledOnly bool
	Page          int
	Limit         int
}

// Offset returns the row offset implied by the filter's page and limit.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Repository defines the interface for incident storage.
type Repository interface {
	CreateIncident(ctx context.Context, incident *domain.Incident) error
	GetIncident(ctx context.Context, orgID, id string) (*domain.Incident, error)
	// ListIncidents returns one page of matching incidents, newest first
	// unless the filter asks for the scheduled ordering, together with the
	// total match count.
	ListIncidents(ctx context.Context, orgID string, filter Filter) ([]domain.Incident, int, error)
	UpdateIncident(ctx context.Context, incident *domain.Incident) error
	// DeleteIncident removes the incident and its update log.
	DeleteIncident(ctx context.Context, orgID, id string) error

	CreateUpdate(ctx context.Context, update *domain.IncidentUpdate) error
	// ListUpdates returns an incident's updates, newest first.
	ListUpdates(ctx context.Context, incidentID string, publicOnly bool) ([]domain.IncidentUpdate, error)
}
