// internal/app/features/modulesettings/routes.go
package modulesettings

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /api/orgs/{orgID}/modules.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Show)
	r.Put("/", h.SetAll)
	r.Post("/reset", h.Reset)
	r.Post("/{key}/toggle", h.Toggle)
	return r
}
