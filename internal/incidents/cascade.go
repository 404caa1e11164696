package incidents

import "github.com/bissquit/statusdeck/internal/domain"

// StatusChange is one step of a service status cascade. Cascades are computed
// up front as an ordered list and applied step by step; each step is
// individually atomic and there is no wrapping transaction, so a partially
// applied cascade leaves earlier steps in place.
type StatusChange struct {
	ServiceID string
	Status    domain.ServiceStatus
}

// cascadeTo builds the change list pushing every affected service of an
// incident to the given status. Maintenance never cascades.
func cascadeTo(incident *domain.Incident, status domain.ServiceStatus) []StatusChange {
	if incident.Type != domain.IncidentTypeIncident || len(incident.AffectedServiceIDs) == 0 {
		return nil
	}

	changes := make([]StatusChange, 0, len(incident.AffectedServiceIDs))
	for _, serviceID := range incident.AffectedServiceIDs {
		changes = append(changes, StatusChange{ServiceID: serviceID, Status: status})
	}
	return changes
}

// CascadeOnCreate returns the status changes a newly created incident implies:
// every affected service takes the status derived from the incident's impact.
func CascadeOnCreate(incident *domain.Incident) []StatusChange {
	return cascadeTo(incident, incident.Impact.ServiceStatus())
}

// CascadeOnResolve returns the status changes resolving an incident implies:
// every affected service reverts to operational.
func CascadeOnResolve(incident *domain.Incident) []StatusChange {
	return cascadeTo(incident, domain.ServiceStatusOperational)
}
