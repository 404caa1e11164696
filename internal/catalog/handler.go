package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/orgs"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	guard     httputil.RoleGuard
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service, guard httputil.RoleGuard) *Handler {
	return &Handler{
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

// RegisterRoutes registers catalog routes on an organization-scoped router,
// one that carries the orgID URL parameter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard(domain.RoleViewer))
			r.Get("/", h.ListServices)
			r.Get("/{serviceID}", h.GetService)
			r.Get("/{serviceID}/history", h.GetServiceHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.guard(domain.RoleEditor))
			r.Post("/", h.CreateService)
			r.Put("/{serviceID}", h.UpdateService)
			r.Patch("/{serviceID}/status", h.UpdateServiceStatus)
		})

		r.With(h.guard(domain.RoleAdmin)).Delete("/{serviceID}", h.DeleteService)
	})
}

// CreateServiceRequest represents the request body for creating a service.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	Group       string `json:"group" validate:"max=100"`
	IsPublic    *bool  `json:"is_public"`
	Status      string `json:"status" validate:"omitempty,oneof=operational degraded_performance partial_outage major_outage"`
}

// UpdateServiceRequest represents the request body for updating a service.
type UpdateServiceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Group       *string `json:"group" validate:"omitempty,max=100"`
	IsPublic    *bool   `json:"is_public"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

// UpdateServiceStatusRequest represents the request body for a status change.
type UpdateServiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational degraded_performance partial_outage major_outage"`
}

// CreateService handles POST /organizations/{orgID}/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.Create(r.Context(), chi.URLParam(r, "orgID"), CreateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Group:       req.Group,
		IsPublic:    req.IsPublic,
		Status:      domain.ServiceStatus(req.Status),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusCreated, service, "service created successfully")
}

// ListServices handles GET /organizations/{orgID}/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.List(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, services)
}

// GetService handles GET /organizations/{orgID}/services/{serviceID}.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.service.Get(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, service)
}

// GetServiceHistory handles GET /organizations/{orgID}/services/{serviceID}/history.
func (h *Handler) GetServiceHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.History(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "serviceID"), limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, entries)
}

// UpdateService handles PUT /organizations/{orgID}/services/{serviceID}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.Update(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "serviceID"), UpdateServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Group:       req.Group,
		IsPublic:    req.IsPublic,
		Order:       req.Order,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, service, "service updated successfully")
}

// UpdateServiceStatus handles PATCH /organizations/{orgID}/services/{serviceID}/status.
func (h *Handler) UpdateServiceStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateServiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.SetStatus(r.Context(),
		chi.URLParam(r, "orgID"),
		chi.URLParam(r, "serviceID"),
		domain.ServiceStatus(req.Status),
	)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, service, "service status updated successfully")
}

// DeleteService handles DELETE /organizations/{orgID}/services/{serviceID}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, nil, "service deleted successfully")
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		{Error: orgs.ErrOrganizationNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	})
}
