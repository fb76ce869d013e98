// internal/app/features/programs/routes.go
package programs

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the program catalog.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List) // mounted under /programs
	r.Get("/{programID}", h.Get)
	r.Get("/{programID}/cohorts", h.ListCohorts)
	return r
}
