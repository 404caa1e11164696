package realtime

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// MembershipChecker gates organization channel subscriptions.
type MembershipChecker interface {
	CanAccess(ctx context.Context, actorID, orgID string, min domain.Role) error
}

// DomainResolver checks that a public status page exists for a domain.
type DomainResolver interface {
	GetByDomain(ctx context.Context, orgDomain string) (*domain.Organization, error)
}

// Handler upgrades HTTP requests to websocket subscriptions.
type Handler struct {
	hub      *Hub
	access   MembershipChecker
	resolver DomainResolver
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler.
func NewHandler(hub *Hub, access MembershipChecker, resolver DomainResolver, allowedOrigins []string) *Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return &Handler{
		hub:      hub,
		access:   access,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originsSet["*"] || originsSet[origin]
			},
		},
	}
}

// RegisterRoutes registers the authenticated organization channel endpoint.
// The auth middleware must run before it.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/organizations/{orgID}", h.SubscribeOrganization)
}

// RegisterPublicRoutes registers the open public channel endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/ws/public/{domain}", h.SubscribePublic)
}

// SubscribeOrganization handles GET /ws/organizations/{orgID}.
func (h *Handler) SubscribeOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	actor := httputil.GetActor(r.Context())

	if err := h.access.CanAccess(r.Context(), actor.ID, orgID, domain.RoleViewer); err != nil {
		httputil.Error(w, http.StatusForbidden, "you are not a member of this organization")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Attach(Organization(orgID), conn)
}

// SubscribePublic handles GET /ws/public/{domain}.
func (h *Handler) SubscribePublic(w http.ResponseWriter, r *http.Request) {
	orgDomain := domain.NormalizeDomain(chi.URLParam(r, "domain"))

	if _, err := h.resolver.GetByDomain(r.Context(), orgDomain); err != nil {
		httputil.Error(w, http.StatusNotFound, "status page not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.hub.Attach(Public(orgDomain), conn)
}
