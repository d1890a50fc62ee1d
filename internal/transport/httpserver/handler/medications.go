package handler

import (
	"errors"
	"net/http"
	"strconv"

	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"
	"maisafe-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) AddMedication(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	m, err := h.Medications.AddMedication(r.Context(), userID, input)
	if err != nil {
		h.log.InternalError("medications.add: create failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toMedicationResponse(*m))
}

// GetMedicationsForCurrentFriend returns the linked patient's medications to
// the calling med-friend.
func (h *Handlers) GetMedicationsForCurrentFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	medications, err := h.Medications.ListForFriend(r.Context(), userID)
	if err != nil {
		if errors.Is(err, frienddomain.ErrNoPatient) {
			writeError(w, http.StatusNotFound, "no_patient", "no patient assigned")
			return
		}
		h.log.InternalError("medications.list-for-friend: list failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toMedicationResponses(medications))
}

func (h *Handlers) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid medication id")
		return
	}

	if err := h.Medications.DeleteMedication(r.Context(), userID, id); err != nil {
		if errors.Is(err, meddomain.ErrMedicationNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "medication not found")
			return
		}
		h.log.InternalError("medications.delete: delete failed", err, "user_id", userID, "medication_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
