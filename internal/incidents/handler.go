package incidents

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/statusdeck/internal/catalog"
	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/orgs"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	guard     httputil.RoleGuard
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service, guard httputil.RoleGuard) *Handler {
	return &Handler{
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

// RegisterRoutes registers incident routes on an organization-scoped router,
// one that carries the orgID URL parameter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard(domain.RoleViewer))
			r.Get("/", h.ListIncidents)
			r.Get("/{incidentID}", h.GetIncident)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.guard(domain.RoleEditor))
			r.Post("/", h.CreateIncident)
			r.Put("/{incidentID}", h.UpdateIncident)
			r.Post("/{incidentID}/updates", h.AppendUpdate)
		})

		r.With(h.guard(domain.RoleAdmin)).Delete("/{incidentID}", h.DeleteIncident)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title              string     `json:"title" validate:"required,min=2,max=200"`
	Description        string     `json:"description" validate:"required,max=2000"`
	Type               string     `json:"type" validate:"required,oneof=incident maintenance"`
	Status             string     `json:"status" validate:"omitempty,oneof=investigating identified monitoring resolved"`
	Impact             string     `json:"impact" validate:"omitempty,oneof=none minor major critical"`
	AffectedServiceIDs []string   `json:"affected_service_ids" validate:"omitempty,dive,uuid"`
	IsPublic           *bool      `json:"is_public"`
	ScheduledFor       *time.Time `json:"scheduled_for"`
	ScheduledUntil     *time.Time `json:"scheduled_until"`
}

// UpdateIncidentRequest represents the request body for updating an incident.
type UpdateIncidentRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=2000"`
	Impact             *string    `json:"impact" validate:"omitempty,oneof=none minor major critical"`
	AffectedServiceIDs []string   `json:"affected_service_ids" validate:"omitempty,dive,uuid"`
	IsPublic           *bool      `json:"is_public"`
	ScheduledFor       *time.Time `json:"scheduled_for"`
	ScheduledUntil     *time.Time `json:"scheduled_until"`
}

// AppendUpdateRequest represents the request body for appending an update.
type AppendUpdateRequest struct {
	Message  string `json:"message" validate:"required,max=2000"`
	Status   string `json:"status" validate:"required,oneof=investigating identified monitoring resolved"`
	IsPublic *bool  `json:"is_public"`
}

// CreateIncident handles POST /organizations/{orgID}/incidents.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())
	incident, err := h.service.Create(r.Context(), chi.URLParam(r, "orgID"), CreateIncidentInput{
		Title:              req.Title,
		Description:        req.Description,
		Type:               domain.IncidentType(req.Type),
		Status:             domain.IncidentStatus(req.Status),
		Impact:             domain.Impact(req.Impact),
		AffectedServiceIDs: req.AffectedServiceIDs,
		IsPublic:           req.IsPublic,
		ScheduledFor:       req.ScheduledFor,
		ScheduledUntil:     req.ScheduledUntil,
	}, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusCreated, incident, "incident created successfully")
}

// ListIncidents handles GET /organizations/{orgID}/incidents.
// Supported query parameters: type, status, page, limit.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := Filter{}
	if v := r.URL.Query().Get("type"); v != "" {
		t := domain.IncidentType(v)
		filter.Type = &t
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := domain.IncidentStatus(v)
		filter.Status = &st
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.service.List(r.Context(), chi.URLParam(r, "orgID"), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, page)
}

// GetIncident handles GET /organizations/{orgID}/incidents/{incidentID}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "incidentID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, detail)
}

// UpdateIncident handles PUT /organizations/{orgID}/incidents/{incidentID}.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateIncidentInput{
		Title:              req.Title,
		Description:        req.Description,
		AffectedServiceIDs: req.AffectedServiceIDs,
		IsPublic:           req.IsPublic,
		ScheduledFor:       req.ScheduledFor,
		ScheduledUntil:     req.ScheduledUntil,
	}
	if req.Impact != nil {
		impact := domain.Impact(*req.Impact)
		input.Impact = &impact
	}

	incident, err := h.service.Update(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "incidentID"), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, incident, "incident updated successfully")
}

// AppendUpdate handles POST /organizations/{orgID}/incidents/{incidentID}/updates.
func (h *Handler) AppendUpdate(w http.ResponseWriter, r *http.Request) {
	var req AppendUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())
	detail, err := h.service.AppendUpdate(r.Context(),
		chi.URLParam(r, "orgID"),
		chi.URLParam(r, "incidentID"),
		AppendUpdateInput{
			Message:  req.Message,
			Status:   domain.IncidentStatus(req.Status),
			IsPublic: req.IsPublic,
		}, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusCreated, detail, "incident update added successfully")
}

// DeleteIncident handles DELETE /organizations/{orgID}/incidents/{incidentID}.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "incidentID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, nil, "incident deleted successfully")
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: orgs.ErrOrganizationNotFound, Status: http.StatusNotFound},
		{Error: catalog.ErrServiceNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidType, Status: http.StatusBadRequest},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrInvalidImpact, Status: http.StatusBadRequest},
	})
}
