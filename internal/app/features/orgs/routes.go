// internal/app/features/orgs/routes.go
package orgs

import "github.com/go-chi/chi/v5"

// MountRoutes mounts organization creation on the /api/orgs router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// MountOrgRoutes mounts the routes under /api/orgs/{orgID}.
func (h *Handler) MountOrgRoutes(r chi.Router) {
	r.Get("/", h.Show)
}
