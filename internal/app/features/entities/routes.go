// internal/app/features/entities/routes.go
package entities

import (
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter for one entity kind. It is mounted under
// /api/orgs/{orgID}/<kind> behind the organization and module middleware.
func Routes[T models.Entity](h *Handler[T]) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/live", h.Live)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
