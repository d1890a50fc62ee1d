package handler

import (
	"errors"
	"net/http"
	"time"

	syncdomain "maisafe-go/internal/domain/sync"
	"maisafe-go/internal/transport/httpserver/middleware"
)

type medicationChangeRequest struct {
	ClientID *int   `json:"client_id"`
	ServerID *int64 `json:"server_id"`
	Action   string `json:"action"`
	medicationRequest
}

type intakeChangeRequest struct {
	ClientID           *int       `json:"client_id"`
	ServerID           *int64     `json:"server_id"`
	MedicationServerID int64      `json:"medication_server_id"`
	Status             string     `json:"status"`
	TakenTime          time.Time  `json:"taken_time"`
	ScheduledTime      *time.Time `json:"scheduled_time"`
	Notes              *string    `json:"notes"`
}

type pushRequest struct {
	Medications   []medicationChangeRequest `json:"medications"`
	IntakeHistory []intakeChangeRequest     `json:"intake_history"`
}

type pushResponse struct {
	Medications   []syncdomain.IDMapping `json:"medications"`
	IntakeHistory []syncdomain.IDMapping `json:"intake_history"`
}

type pullResponse struct {
	Medications   []medicationResponse `json:"medications"`
	IntakeHistory []intakeResponse     `json:"intake_history"`
}

func (h *Handlers) SyncPush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	input := syncdomain.PushInput{
		Medications:   make([]syncdomain.MedicationChange, 0, len(req.Medications)),
		IntakeHistory: make([]syncdomain.IntakeChange, 0, len(req.IntakeHistory)),
	}
	for _, change := range req.Medications {
		medInput, err := change.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		input.Medications = append(input.Medications, syncdomain.MedicationChange{
			ServerID: change.ServerID,
			Action:   change.Action,
			Input:    medInput,
		})
	}
	for _, change := range req.IntakeHistory {
		input.IntakeHistory = append(input.IntakeHistory, syncdomain.IntakeChange{
			ServerID:           change.ServerID,
			MedicationServerID: change.MedicationServerID,
			Status:             change.Status,
			TakenTime:          change.TakenTime,
			ScheduledTime:      change.ScheduledTime,
			Notes:              change.Notes,
		})
	}

	result, err := h.Sync.Push(r.Context(), userID, input)
	if err != nil {
		var itemErr *syncdomain.ItemError
		message := "sync push failed"
		if errors.As(err, &itemErr) {
			message = itemErr.Error()
		}
		switch {
		case errors.Is(err, syncdomain.ErrInvalidItem):
			writeError(w, http.StatusBadRequest, "invalid_request", message)
		case errors.Is(err, syncdomain.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", message)
		default:
			h.log.InternalError("sync.push: apply failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	// Mappings come back in input order; honor explicit client ids when the
	// client supplied them.
	for i := range result.Medications {
		if req.Medications[i].ClientID != nil {
			result.Medications[i].ClientID = *req.Medications[i].ClientID
		}
	}
	for i := range result.IntakeHistory {
		if req.IntakeHistory[i].ClientID != nil {
			result.IntakeHistory[i].ClientID = *req.IntakeHistory[i].ClientID
		}
	}

	writeJSON(w, http.StatusOK, pushResponse{
		Medications:   result.Medications,
		IntakeHistory: result.IntakeHistory,
	})
}

func (h *Handlers) SyncPull(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	since, err := parseTimeParam(r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid since timestamp")
		return
	}

	result, err := h.Sync.Pull(r.Context(), userID, since)
	if err != nil {
		h.log.InternalError("sync.pull: list failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, pullResponse{
		Medications:   toMedicationResponses(result.Medications),
		IntakeHistory: toIntakeResponses(result.IntakeHistory),
	})
}
