// internal/app/features/enroll/handler.go
package enroll

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/enrollment"
	"github.com/dalemusser/coachhub/internal/app/system/payments"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ConfirmSecretHeader carries the shared secret on payment confirmation
// callbacks.
const ConfirmSecretHeader = "X-Confirm-Secret"

type Handler struct {
	Orchestrator  *enrollment.Orchestrator
	Users         *userstore.Store
	ConfirmSecret string
	Log           *zap.Logger
}

func NewHandler(orch *enrollment.Orchestrator, users *userstore.Store, confirmSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		Orchestrator:  orch,
		Users:         users,
		ConfirmSecret: confirmSecret,
		Log:           logger,
	}
}

type enrollRequest struct {
	ProgramID     string `json:"program_id"`
	CohortID      string `json:"cohort_id,omitempty"`
	DiscountCode  string `json:"discount_code,omitempty"`
	JoinCommunity bool   `json:"join_community,omitempty"`
}

type enrollResponse struct {
	Enrollment  *models.Enrollment `json:"enrollment,omitempty"`
	CheckoutURL string             `json:"checkout_url,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Serve handles POST /enroll for the signed-in user. A free (or fully
// discounted) enrollment is created immediately; a paid one returns a
// checkout URL and no enrollment yet.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, `{"error":"sign-in required"}`, http.StatusUnauthorized)
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		http.Error(w, `{"error":"invalid program id"}`, http.StatusBadRequest)
		return
	}
	var cohortID *primitive.ObjectID
	if req.CohortID != "" {
		id, err := primitive.ObjectIDFromHex(req.CohortID)
		if err != nil {
			http.Error(w, `{"error":"invalid cohort id"}`, http.StatusBadRequest)
			return
		}
		cohortID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	personID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		http.Error(w, `{"error":"sign-in required"}`, http.StatusUnauthorized)
		return
	}
	person, err := h.Users.GetByID(ctx, personID)
	if err != nil {
		h.Log.Error("enroll: person lookup failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	outcome, err := h.Orchestrator.Enroll(ctx, enrollment.EnrollParams{
		Person:             *person,
		ProgramID:          programID,
		CohortID:           cohortID,
		DiscountCode:       req.DiscountCode,
		OptedIntoCommunity: req.JoinCommunity,
	})
	if err != nil {
		h.writeEnrollError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if outcome.Enrollment != nil {
		w.WriteHeader(http.StatusCreated)
	}
	_ = json.NewEncoder(w).Encode(enrollResponse{
		Enrollment:  outcome.Enrollment,
		CheckoutURL: outcome.CheckoutURL,
		Warnings:    outcome.Warnings,
	})
}

// Confirm handles POST /enroll/payments/confirm, the payment
// collaborator's success callback. It is authenticated by shared secret,
// not session.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h.ConfirmSecret == "" ||
		subtle.ConstantTimeCompare([]byte(r.Header.Get(ConfirmSecretHeader)), []byte(h.ConfirmSecret)) != 1 {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}

	var payload struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	meta, err := payments.DecodeMetadata(payload.Metadata)
	if err != nil {
		http.Error(w, `{"error":"invalid metadata"}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	result, err := h.Orchestrator.ConfirmPayment(ctx, meta)
	if err != nil {
		if errors.Is(err, payments.ErrBadMetadata) {
			http.Error(w, `{"error":"invalid metadata"}`, http.StatusBadRequest)
			return
		}
		h.writeEnrollError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(enrollResponse{
		Enrollment: &result.Enrollment,
		Warnings:   result.Warnings,
	})
}

func (h *Handler) writeEnrollError(w http.ResponseWriter, err error) {
	type errBody struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}

	var code string
	var status int
	switch {
	case errors.Is(err, enrollment.ErrProgramUnavailable):
		code, status = "program_unavailable", http.StatusNotFound
	case errors.Is(err, enrollment.ErrCohortClosed):
		code, status = "cohort_closed", http.StatusConflict
	case errors.Is(err, enrollment.ErrCohortFull):
		code, status = "cohort_full", http.StatusConflict
	case errors.Is(err, enrollment.ErrAlreadyEnrolled):
		code, status = "already_enrolled", http.StatusConflict
	case errors.Is(err, enrollment.ErrConflictingActiveEnrollment):
		code, status = "conflicting_enrollment", http.StatusConflict
	case errors.Is(err, enrollment.ErrInvalidDiscount):
		code, status = "invalid_discount", http.StatusUnprocessableEntity
	case errors.Is(err, enrollment.ErrPaymentSetupMissing):
		code, status = "payments_unavailable", http.StatusServiceUnavailable
	default:
		h.Log.Error("enroll failed", zap.Error(err))
		code, status = "internal_error", http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errBody{Error: err.Error(), Code: code})
}
