// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the member subrouter, mounted by the families feature
// under /families/{familyID}/members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequirePrincipal)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Get("/{memberID}", h.ServeMember)
	r.Patch("/{memberID}", h.HandleUpdate)
	r.Delete("/{memberID}", h.HandleDelete)

	return r
}
