package handler

import (
	"errors"
	"net/http"
	"time"

	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"
	"maisafe-go/internal/transport/httpserver/middleware"
)

type intakeRequest struct {
	MedicationID  int64      `json:"medication_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
}

// AddOrUpdateIntake upserts the intake row for (medication, scheduled_time).
func (h *Handlers) AddOrUpdateIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	if req.MedicationID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "medication_id is required")
		return
	}
	if !meddomain.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid status")
		return
	}
	if req.ScheduledTime.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "scheduled_time is required")
		return
	}

	intake, err := h.Medications.RecordIntake(r.Context(), userID, meddomain.IntakeInput{
		MedicationID:  req.MedicationID,
		ScheduledTime: req.ScheduledTime,
		TakenTime:     req.TakenTime,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		if errors.Is(err, meddomain.ErrMedicationNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "medication not found")
			return
		}
		h.log.InternalError("intake.add_or_update: record failed", err, "user_id", userID, "medication_id", req.MedicationID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toIntakeResponse(*intake))
}

func (h *Handlers) GetIntakesForCurrentFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	intakes, err := h.Medications.ListIntakesForFriend(r.Context(), userID)
	if err != nil {
		if errors.Is(err, frienddomain.ErrNoPatient) {
			writeError(w, http.StatusNotFound, "no_patient", "no patient assigned")
			return
		}
		h.log.InternalError("intake.list-for-friend: list failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toIntakeResponses(intakes))
}
