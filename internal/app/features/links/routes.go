// internal/app/features/links/routes.go
package links

import (
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the link routes under the base path (typically "/links"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequirePrincipal)

	r.Post("/", h.HandleLink)
	r.Get("/", h.ServeList)

	return r
}
