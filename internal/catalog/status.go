package catalog

import (
	"sort"

	"github.com/bissquit/statusdeck/internal/domain"
)

// OverallStatus aggregates the page-level status from the organization's
// services: the worst status among public services wins. An organization
// with no public services reads as operational.
func OverallStatus(services []domain.Service) domain.ServiceStatus {
	overall := domain.ServiceStatusOperational
	for _, svc := range services {
		if !svc.IsPublic {
			continue
		}
		if svc.Status.Severity() > overall.Severity() {
			overall = svc.Status
		}
	}
	return overall
}

// ServiceGroup is a named display group of services.
type ServiceGroup struct {
	Name     string           `json:"name"`
	Services []domain.Service `json:"services"`
}

// GroupServices buckets services by their group name. Groups appear in the
// order they are first seen; within a group the input order is kept, so a
// caller that sorts by the order field first gets ordered groups too.
func GroupServices(services []domain.Service) []ServiceGroup {
	index := make(map[string]int)
	groups := make([]ServiceGroup, 0)

	for _, svc := range services {
		name := svc.Group
		if name == "" {
			name = domain.DefaultServiceGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ServiceGroup{Name: name})
		}
		groups[i].Services = append(groups[i].Services, svc)
	}

	return groups
}

// SortServices orders services for display: by group name, then the order
// field, then creation time. The sort is stable.
func SortServices(services []domain.Service) {
	sort.SliceStable(services, func(i, j int) bool {
		if services[i].Group != services[j].Group {
			return services[i].Group < services[j].Group
		}
		if services[i].Order != services[j].Order {
			return services[i].Order < services[j].Order
		}
		return services[i].CreatedAt.Before(services[j].CreatedAt)
	})
}
