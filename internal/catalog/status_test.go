package catalog

import (
	"testing"
	"time"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		services []domain.Service
		want     domain.ServiceStatus
	}{
		{
			name: "no services",
			want: domain.ServiceStatusOperational,
		},
		{
			name: "all operational",
			services: []domain.Service{
				{Status: domain.ServiceStatusOperational, IsPublic: true},
				{Status: domain.ServiceStatusOperational, IsPublic: true},
			},
			want: domain.ServiceStatusOperational,
		},
		{
			name: "worst status wins",
			services: []domain.Service{
				{Status: domain.ServiceStatusDegraded, IsPublic: true},
				{Status: domain.ServiceStatusMajorOutage, IsPublic: true},
				{Status: domain.ServiceStatusPartialOutage, IsPublic: true},
			},
			want: domain.ServiceStatusMajorOutage,
		},
		{
			name: "private outage does not leak into the public page",
			services: []domain.Service{
				{Status: domain.ServiceStatusOperational, IsPublic: true},
				{Status: domain.ServiceStatusMajorOutage, IsPublic: false},
			},
			want: domain.ServiceStatusOperational,
		},
		{
			name: "only private services",
			services: []domain.Service{
				{Status: domain.ServiceStatusPartialOutage, IsPublic: false},
			},
			want: domain.ServiceStatusOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallStatus(tt.services))
		})
	}
}

func TestGroupServices(t *testing.T) {
	services := []domain.Service{
		{Name: "api", Group: "Core"},
		{Name: "web", Group: "Core"},
		{Name: "smtp", Group: "Email"},
		{Name: "imap", Group: "Email"},
		{Name: "cron", Group: ""},
	}

	groups := GroupServices(services)

	assert.Len(t, groups, 3)
	assert.Equal(t, "Core", groups[0].Name)
	assert.Equal(t, []string{"api", "web"}, serviceNames(groups[0].Services))
	assert.Equal(t, "Email", groups[1].Name)
	assert.Equal(t, []string{"smtp", "imap"}, serviceNames(groups[1].Services))
	assert.Equal(t, domain.DefaultServiceGroup, groups[2].Name)
}

func TestSortServices(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	recent := time.Now()

	services := []domain.Service{
		{Name: "d", Group: "B", Order: 0},
		{Name: "b", Group: "A", Order: 1},
		{Name: "a", Group: "A", Order: 0},
		{Name: "c2", Group: "A", Order: 2, CreatedAt: recent},
		{Name: "c1", Group: "A", Order: 2, CreatedAt: old},
	}

	SortServices(services)

	assert.Equal(t, []string{"a", "b", "c1", "c2", "d"}, serviceNames(services))
}

func serviceNames(services []domain.Service) []string {
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	return names
}
