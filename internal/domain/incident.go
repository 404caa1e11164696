package domain

import "time"

// IncidentType distinguishes unplanned incidents from planned maintenance.
type IncidentType string

// Incident types.
const (
	IncidentTypeIncident    IncidentType = "incident"
	IncidentTypeMaintenance IncidentType = "maintenance"
)

// IsValid checks if the incident type is valid.
func (t IncidentType) IsValid() bool {
	return t == IncidentTypeIncident || t == IncidentTypeMaintenance
}

// IncidentStatus represents the lifecycle stage of an incident.
type IncidentStatus string

// Incident statuses. The lifecycle is ordered but not strictly monotonic:
// an incident can move between the non-resolved stages freely.
const (
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusIdentified    IncidentStatus = "identified"
	IncidentStatusMonitoring    IncidentStatus = "monitoring"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusInvestigating, IncidentStatusIdentified,
		IncidentStatusMonitoring, IncidentStatusResolved:
		return true
	}
	return false
}

// Impact represents the severity of an incident.
type Impact string

// Impact levels.
const (
	ImpactNone     Impact = "none"
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// IsValid checks if the impact is valid.
func (i Impact) IsValid() bool {
	switch i {
	case ImpactNone, ImpactMinor, ImpactMajor, ImpactCritical:
		return true
	}
	return false
}

// ServiceStatus maps an incident impact to the status applied to its
// affected services.
func (i Impact) ServiceStatus() ServiceStatus {
	switch i {
	case ImpactCritical:
		return ServiceStatusMajorOutage
	case ImpactMajor:
		return ServiceStatusPartialOutage
	case ImpactMinor:
		return ServiceStatusDegraded
	default:
		return ServiceStatusOperational
	}
}

// Incident represents an incident or maintenance window.
// ScheduledFor and ScheduledUntil are only meaningful for maintenance.
type Incident struct {
	ID                 string         `json:"id"`
	OrganizationID     string         `json:"organization_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Type               IncidentType   `json:"type"`
	Status             IncidentStatus `json:"status"`
	Impact             Impact         `json:"impact"`
	AffectedServiceIDs []string       `json:"affected_service_ids"`
	IsPublic           bool           `json:"is_public"`
	ScheduledFor       *time.Time     `json:"scheduled_for,omitempty"`
	ScheduledUntil     *time.Time     `json:"scheduled_until,omitempty"`
	ResolvedAt         *time.Time     `json:"resolved_at"`
	CreatedBy          string         `json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsResolved reports whether the incident has reached the resolved stage.
func (i *Incident) IsResolved() bool {
	return i.Status == IncidentStatusResolved
}

// IncidentUpdate is one immutable entry in an incident's update log.
// The incident's current status always equals its latest update's status.
type IncidentUpdate struct {
	ID         string         `json:"id"`
	IncidentID string         `json:"incident_id"`
	Message    string         `json:"message"`
	Status     IncidentStatus `json:"status"`
	IsPublic   bool           `json:"is_public"`
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}
