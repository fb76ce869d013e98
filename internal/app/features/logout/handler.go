// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Log:      logger,
	}
}

// Serve handles POST /logout. Clearing an absent session is a no-op.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("user signed out", zap.String("user_id", u.ID))
	}
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
