package domain

import "time"

// ServiceStatus represents the operational status of a service.
type ServiceStatus string

// Service statuses.
const (
	ServiceStatusOperational   ServiceStatus = "operational"
	ServiceStatusDegraded      ServiceStatus = "degraded_performance"
	ServiceStatusPartialOutage ServiceStatus = "partial_outage"
	ServiceStatusMajorOutage   ServiceStatus = "major_outage"
)

// IsValid checks if the service status is valid.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusOperational, ServiceStatusDegraded,
		ServiceStatusPartialOutage, ServiceStatusMajorOutage:
		return true
	}
	return false
}

// Severity returns the rank of a status for worst-status-wins aggregation.
// Higher means worse. Unknown statuses rank as operational.
func (s ServiceStatus) Severity() int {
	switch s {
	case ServiceStatusMajorOutage:
		return 3
	case ServiceStatusPartialOutage:
		return 2
	case ServiceStatusDegraded:
		return 1
	default:
		return 0
	}
}

// DefaultServiceGroup is the group assigned to services created without one.
const DefaultServiceGroup = "Default"

// Service represents a monitored component of an organization.
type Service struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organization_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ServiceStatus `json:"status"`
	Group          string        `json:"group"`
	IsPublic       bool          `json:"is_public"`
	Order          int           `json:"order"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ServiceHistoryEntry is an append-only record of a service status change.
// Duration is always recorded as 0 at write time; backfill on the next
// transition is a known gap, so readers must treat it as unknown.
type ServiceHistoryEntry struct {
	ID        string        `json:"id"`
	ServiceID string        `json:"service_id"`
	Status    ServiceStatus `json:"status"`
	Duration  int           `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
