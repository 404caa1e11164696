// Package orgs provides HTTP handlers and business logic for organizations,
// team membership and the access policy built on top of both.
package orgs

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the orgs module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new orgs handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all orgs routes. The auth middleware must run
// before them; per-organization role checks are applied here. Handlers for
// resources nested under an organization register through mounts, which run
// inside the organization-scoped route.
func (h *Handler) RegisterRoutes(r chi.Router, mounts ...func(chi.Router)) {
	r.Post("/organizations", h.CreateOrganization)
	r.Get("/organizations", h.ListOrganizations)
	r.Post("/invites/{token}/accept", h.AcceptInvite)

	r.Route("/organizations/{orgID}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(h.service, domain.RoleViewer))
			r.Get("/", h.GetOrganization)
			r.Get("/team", h.ListMembers)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(h.service, domain.RoleAdmin))
			r.Put("/", h.UpdateOrganization)
			r.Delete("/", h.DeleteOrganization)
			r.Post("/team", h.InviteMember)
			r.Put("/team/{memberID}", h.UpdateMemberRole)
			r.Delete("/team/{memberID}", h.RemoveMember)
		})

		for _, mount := range mounts {
			mount(r)
		}
	})
}

// CreateOrganizationRequest represents the request body for creating an organization.
type CreateOrganizationRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Domain     string `json:"domain" validate:"required,min=2,max=100,hostname_rfc1123"`
	Logo       string `json:"logo"`
	BrandColor string `json:"brand_color" validate:"omitempty,hexcolor"`
}

// UpdateOrganizationRequest represents the request body for updating an organization.
type UpdateOrganizationRequest struct {
	Name       *string                      `json:"name" validate:"omitempty,min=2,max=100"`
	Logo       *string                      `json:"logo"`
	BrandColor *string                      `json:"brand_color" validate:"omitempty,hexcolor"`
	Settings   *domain.OrganizationSettings `json:"settings"`
}

// InviteMemberRequest represents the request body for inviting a team member.
type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Role  string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// UpdateMemberRoleRequest represents the request body for changing a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// CreateOrganization handles POST /organizations.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())
	org, err := h.service.CreateOrganization(r.Context(), CreateOrganizationInput{
		Name:       req.Name,
		Domain:     req.Domain,
		Logo:       req.Logo,
		BrandColor: req.BrandColor,
	}, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusCreated, org, "organization created successfully")
}

// ListOrganizations handles GET /organizations.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r.Context())

	memberships, err := h.service.ListForActor(r.Context(), actor.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, memberships)
}

// GetOrganization handles GET /organizations/{orgID}.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.Get(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, org)
}

// UpdateOrganization handles PUT /organizations/{orgID}.
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	org, err := h.service.Update(r.Context(), chi.URLParam(r, "orgID"), UpdateOrganizationInput{
		Name:       req.Name,
		Logo:       req.Logo,
		BrandColor: req.BrandColor,
		Settings:   req.Settings,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, org, "organization updated successfully")
}

// DeleteOrganization handles DELETE /organizations/{orgID}.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "orgID")); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, nil, "organization deleted successfully")
}

// ListMembers handles GET /organizations/{orgID}/team.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, members)
}

// InviteMember handles POST /organizations/{orgID}/team.
func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	member, err := h.service.InviteMember(r.Context(), chi.URLParam(r, "orgID"), InviteMemberInput{
		Email: req.Email,
		Name:  req.Name,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// The token travels out-of-band (invitation email); it is returned to the
	// inviter once here and never serialized with the member afterwards.
	httputil.SuccessMessage(w, http.StatusCreated, map[string]interface{}{
		"member":       member,
		"invite_token": member.InviteToken,
	}, "invitation sent successfully")
}

// AcceptInvite handles POST /invites/{token}/accept.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r.Context())

	member, err := h.service.AcceptInvite(r.Context(), chi.URLParam(r, "token"), actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, map[string]string{
		"organization_id": member.OrganizationID,
	}, "invitation accepted successfully")
}

// UpdateMemberRole handles PUT /organizations/{orgID}/team/{memberID}.
func (h *Handler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	actor := httputil.GetActor(r.Context())
	member, err := h.service.UpdateMemberRole(r.Context(),
		chi.URLParam(r, "orgID"),
		chi.URLParam(r, "memberID"),
		domain.Role(req.Role),
		actor.ID,
	)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, member, "team member updated successfully")
}

// RemoveMember handles DELETE /organizations/{orgID}/team/{memberID}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r.Context())

	err := h.service.RemoveMember(r.Context(),
		chi.URLParam(r, "orgID"),
		chi.URLParam(r, "memberID"),
		actor.ID,
	)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.SuccessMessage(w, http.StatusOK, nil, "team member removed successfully")
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
		{Error: ErrMemberNotFound, Status: http.StatusNotFound},
		{Error: ErrInviteNotFound, Status: http.StatusNotFound},
		{Error: ErrDomainTaken, Status: http.StatusConflict},
		{Error: ErrMemberExists, Status: http.StatusConflict},
		{Error: ErrInviteEmailMismatch, Status: http.StatusForbidden},
		{Error: ErrOwnRole, Status: http.StatusBadRequest},
		{Error: ErrOwnRemove, Status: http.StatusBadRequest},
	})
}
