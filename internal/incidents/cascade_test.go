package incidents

import (
	"testing"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCascadeOnCreate(t *testing.T) {
	tests := []struct {
		name     string
		incident domain.Incident
		want     []StatusChange
	}{
		{
			name: "critical impact",
			incident: domain.Incident{
				Type:               domain.IncidentTypeIncident,
				Impact:             domain.ImpactCritical,
				AffectedServiceIDs: []string{"svc-1", "svc-2"},
			},
			want: []StatusChange{
				{ServiceID: "svc-1", Status: domain.ServiceStatusMajorOutage},
				{ServiceID: "svc-2", Status: domain.ServiceStatusMajorOutage},
			},
		},
		{
			name: "major impact",
			incident: domain.Incident{
				Type:               domain.IncidentTypeIncident,
				Impact:             domain.ImpactMajor,
				AffectedServiceIDs: []string{"svc-1"},
			},
			want: []StatusChange{{ServiceID: "svc-1", Status: domain.ServiceStatusPartialOutage}},
		},
		{
			name: "minor impact",
			incident: domain.Incident{
				Type:               domain.IncidentTypeIncident,
				Impact:             domain.ImpactMinor,
				AffectedServiceIDs: []string{"svc-1"},
			},
			want: []StatusChange{{ServiceID: "svc-1", Status: domain.ServiceStatusDegraded}},
		},
		{
			name: "no impact maps to operational",
			incident: domain.Incident{
				Type:               domain.IncidentTypeIncident,
				Impact:             domain.ImpactNone,
				AffectedServiceIDs: []string{"svc-1"},
			},
			want: []StatusChange{{ServiceID: "svc-1", Status: domain.ServiceStatusOperational}},
		},
		{
			name: "maintenance never cascades",
			incident: domain.Incident{
				Type:               domain.IncidentTypeMaintenance,
				Impact:             domain.ImpactCritical,
				AffectedServiceIDs: []string{"svc-1"},
			},
			want: nil,
		},
		{
			name: "no affected services",
			incident: domain.Incident{
				Type:   domain.IncidentTypeIncident,
				Impact: domain.ImpactCritical,
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CascadeOnCreate(&tt.incident))
		})
	}
}

func TestCascadeOnResolve(t *testing.T) {
	incident := domain.Incident{
		Type:               domain.IncidentTypeIncident,
		Impact:             domain.ImpactCritical,
		AffectedServiceIDs: []string{"svc-1", "svc-2"},
	}

	assert.Equal(t, []StatusChange{
		{ServiceID: "svc-1", Status: domain.ServiceStatusOperational},
		{ServiceID: "svc-2", Status: domain.ServiceStatusOperational},
	}, CascadeOnResolve(&incident))

	maintenance := domain.Incident{
		Type:               domain.IncidentTypeMaintenance,
		AffectedServiceIDs: []string{"svc-1"},
	}
	assert.Nil(t, CascadeOnResolve(&maintenance))
}
