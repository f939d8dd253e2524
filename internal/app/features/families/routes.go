// internal/app/features/families/routes.go
package families

import (
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the family routes under the base path (typically
// "/families" from bootstrap). Every route requires a signed-in
// principal; creator-only checks happen in the handlers. memberRoutes
// is the members feature's subrouter, mounted per family.
func Routes(h *Handler, memberRoutes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequirePrincipal)

	r.Post("/", h.HandleCreate)
	r.Get("/{familyID}", h.ServeView)
	r.Post("/{familyID}/main", h.HandleSetMain)
	r.Post("/{familyID}/parents", h.HandleSetupParents)
	r.Post("/{familyID}/children", h.HandleSetupChildren)
	r.Mount("/{familyID}/members", memberRoutes)

	return r
}
