// internal/app/features/enroll/routes.go
package enroll

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for enrollment. `requireUser` guards the
// interactive endpoint; the confirm callback is guarded by shared secret
// inside the handler instead.
func Routes(h *Handler, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(requireUser).Post("/", h.Serve) // mounted under /enroll
	r.Post("/payments/confirm", h.Confirm)
	return r
}
