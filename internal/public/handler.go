// Package public serves the unauthenticated status page surface. Everything
// here is keyed by organization domain and filtered down to public services,
// public incidents and public updates before it leaves the process.
package public

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bissquit/statusdeck/internal/catalog"
	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/incidents"
	"github.com/bissquit/statusdeck/internal/orgs"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// OrganizationResolver maps a public domain slug to its organization.
type OrganizationResolver interface {
	GetByDomain(ctx context.Context, orgDomain string) (*domain.Organization, error)
}

// CatalogReader lists an organization's public services.
type CatalogReader interface {
	ListPublic(ctx context.Context, orgID string) ([]domain.Service, error)
}

// IncidentReader reads incidents and their update logs with visibility
// filtering pushed down to the query.
type IncidentReader interface {
	GetIncident(ctx context.Context, orgID, id string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, orgID string, filter incidents.Filter) ([]domain.Incident, int, error)
	ListUpdates(ctx context.Context, incidentID string, publicOnly bool) ([]domain.IncidentUpdate, error)
}

// Handler handles the public status page endpoints.
type Handler struct {
	resolver OrganizationResolver
	services CatalogReader
	reader   IncidentReader
}

// NewHandler creates a new public handler.
func NewHandler(resolver OrganizationResolver, services CatalogReader, reader IncidentReader) *Handler {
	return &Handler{resolver: resolver, services: services, reader: reader}
}

// RegisterRoutes registers the public routes. The caller applies rate
// limiting; no authentication runs here.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/public/{domain}", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/incidents", h.ListIncidentHistory)
		r.Get("/incidents/{incidentID}", h.GetIncident)
	})
}

// Branding is the subset of an organization shown on its public page.
type Branding struct {
	Name       string                      `json:"name"`
	Domain     string                      `json:"domain"`
	Logo       string                      `json:"logo,omitempty"`
	BrandColor string                      `json:"brand_color"`
	Settings   domain.OrganizationSettings `json:"settings"`
}

// StatusResponse is the payload of the public status endpoint.
type StatusResponse struct {
	Organization         Branding               `json:"organization"`
	OverallStatus        domain.ServiceStatus   `json:"overall_status"`
	ServiceGroups        []catalog.ServiceGroup `json:"service_groups"`
	ActiveIncidents      []IncidentView         `json:"active_incidents"`
	ScheduledMaintenance []domain.Incident      `json:"scheduled_maintenance"`
}

// IncidentView is a public incident with its public updates.
type IncidentView struct {
	domain.Incident
	Updates []domain.IncidentUpdate `json:"updates"`
}

// HistoryPage is one page of resolved public incidents.
type HistoryPage struct {
	Incidents []domain.Incident `json:"incidents"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
	Pages     int               `json:"pages"`
}

// GetStatus handles GET /public/{domain}/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	org, err := h.resolveOrg(w, r)
	if err != nil {
		return
	}

	services, err := h.services.ListPublic(r.Context(), org.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resolved := false
	incidentType := domain.IncidentTypeIncident
	active, _, err := h.reader.ListIncidents(r.Context(), org.ID, incidents.Filter{
		Type:       &incidentType,
		PublicOnly: true,
		Resolved:   &resolved,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	activeViews := make([]IncidentView, 0, len(active))
	for _, inc := range active {
		updates, err := h.reader.ListUpdates(r.Context(), inc.ID, true)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		activeViews = append(activeViews, IncidentView{Incident: inc, Updates: updates})
	}

	maintenanceType := domain.IncidentTypeMaintenance
	maintenance, _, err := h.reader.ListIncidents(r.Context(), org.ID, incidents.Filter{
		Type:          &maintenanceType,
		PublicOnly:    true,
		Resolved:      &resolved,
		ScheduledOnly: true,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, StatusResponse{
		Organization: Branding{
			Name:       org.Name,
			Domain:     org.Domain,
			Logo:       org.Logo,
			BrandColor: org.BrandColor,
			Settings:   org.Settings,
		},
		OverallStatus:        catalog.OverallStatus(services),
		ServiceGroups:        catalog.GroupServices(services),
		ActiveIncidents:      activeViews,
		ScheduledMaintenance: maintenance,
	})
}

// ListIncidentHistory handles GET /public/{domain}/incidents: the resolved
// public incident history, paginated.
func (h *Handler) ListIncidentHistory(w http.ResponseWriter, r *http.Request) {
	org, err := h.resolveOrg(w, r)
	if err != nil {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	resolved := true
	history, total, err := h.reader.ListIncidents(r.Context(), org.ID, incidents.Filter{
		PublicOnly: true,
		Resolved:   &resolved,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, HistoryPage{
		Incidents: history,
		Total:     total,
		Page:      page,
		Limit:     limit,
		Pages:     (total + limit - 1) / limit,
	})
}

// GetIncident handles GET /public/{domain}/incidents/{incidentID}. Private
// incidents and private updates are indistinguishable from missing ones.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	org, err := h.resolveOrg(w, r)
	if err != nil {
		return
	}

	incident, err := h.reader.GetIncident(r.Context(), org.ID, chi.URLParam(r, "incidentID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !incident.IsPublic {
		httputil.Error(w, http.StatusNotFound, incidents.ErrIncidentNotFound.Error())
		return
	}

	updates, err := h.reader.ListUpdates(r.Context(), incident.ID, true)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, IncidentView{Incident: *incident, Updates: updates})
}

func (h *Handler) resolveOrg(w http.ResponseWriter, r *http.Request) (*domain.Organization, error) {
	org, err := h.resolver.GetByDomain(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		h.handleError(w, r, err)
		return nil, err
	}
	return org, nil
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: orgs.ErrOrganizationNotFound, Status: http.StatusNotFound},
		{Error: incidents.ErrIncidentNotFound, Status: http.StatusNotFound},
	})
}
