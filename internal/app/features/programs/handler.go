// internal/app/features/programs/handler.go
package programs

import (
	"context"
	"encoding/json"
	"net/http"

	cohortstore "github.com/dalemusser/coachhub/internal/app/store/cohorts"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Programs *programstore.Store
	Cohorts  *cohortstore.Store
	Log      *zap.Logger
}

func NewHandler(programs *programstore.Store, cohorts *cohortstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Programs: programs,
		Cohorts:  cohorts,
		Log:      logger,
	}
}

// List handles GET /programs: the published programs of the signed-in
// user's organization.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.OrganizationID == "" {
		http.Error(w, `{"error":"sign-in required"}`, http.StatusUnauthorized)
		return
	}
	orgID, err := primitive.ObjectIDFromHex(u.OrganizationID)
	if err != nil {
		http.Error(w, `{"error":"sign-in required"}`, http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Programs.ListPublished(ctx, orgID)
	if err != nil {
		h.Log.Error("programs: list failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Programs []models.Program `json:"programs"`
	}{Programs: list})
}

// Get handles GET /programs/{programID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	programID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "programID"))
	if err != nil {
		http.Error(w, `{"error":"invalid program id"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	program, err := h.Programs.GetByID(ctx, programID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, `{"error":"program not found"}`, http.StatusNotFound)
			return
		}
		h.Log.Error("programs: get failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !program.Available() {
		http.Error(w, `{"error":"program not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Program models.Program `json:"program"`
	}{Program: program})
}

// Cohorts handles GET /programs/{programID}/cohorts.
func (h *Handler) ListCohorts(w http.ResponseWriter, r *http.Request) {
	programID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "programID"))
	if err != nil {
		http.Error(w, `{"error":"invalid program id"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	program, err := h.Programs.GetByID(ctx, programID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, `{"error":"program not found"}`, http.StatusNotFound)
			return
		}
		h.Log.Error("programs: get failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !program.Available() {
		http.Error(w, `{"error":"program not found"}`, http.StatusNotFound)
		return
	}

	cohorts, err := h.Cohorts.ListByProgram(ctx, program.ID)
	if err != nil {
		h.Log.Error("programs: cohort list failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Cohorts []models.Cohort `json:"cohorts"`
	}{Cohorts: cohorts})
}
