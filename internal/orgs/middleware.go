package orgs

import (
	"errors"
	"net/http"

	"github.com/bissquit/statusdeck/internal/domain"
	"github.com/bissquit/statusdeck/internal/pkg/ctxlog"
	"github.com/bissquit/statusdeck/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// RequireRole builds middleware that admits only accepted members of the
// organization named by the orgID URL parameter whose role permits min.
func RequireRole(svc *Service, min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID := chi.URLParam(r, "orgID")
			actor := httputil.GetActor(r.Context())

			if err := svc.CanAccess(r.Context(), actor.ID, orgID, min); err != nil {
				switch {
				case errors.Is(err, ErrNotMember), errors.Is(err, ErrForbidden):
					httputil.Error(w, http.StatusForbidden, err.Error())
				default:
					ctxlog.Error(r.Context(), "membership check failed", "error", err)
					httputil.Error(w, http.StatusInternalServerError, "internal error")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
