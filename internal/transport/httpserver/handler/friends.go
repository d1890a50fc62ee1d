package handler

import (
	"errors"
	"net/http"

	frienddomain "maisafe-go/internal/domain/friend"
	"maisafe-go/internal/transport/httpserver/middleware"
)

type invitationResponse struct {
	Code             string `json:"code"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type addFriendRequest struct {
	Code string `json:"code"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type partnerResponse struct {
	UUID     *string `json:"uuid"`
	Username *string `json:"username"`
	Message  string  `json:"message,omitempty"`
}

func (h *Handlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	code, ttlSeconds, err := h.Friends.CreateInvitation(r.Context(), userID)
	if err != nil {
		if errors.Is(err, frienddomain.ErrAlreadyLinked) {
			h.log.BusinessError("friends.invitation: already linked", err, "user_id", userID)
			writeError(w, http.StatusConflict, "already_linked", "already linked to a patient")
			return
		}
		h.log.InternalError("friends.invitation: create failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, invitationResponse{Code: code, ExpiresInSeconds: ttlSeconds})
}

func (h *Handlers) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req addFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	if err := h.Friends.Redeem(r.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, frienddomain.ErrInvalidCode):
			writeError(w, http.StatusNotFound, "invalid_code", "invitation code not found")
		case errors.Is(err, frienddomain.ErrCodeExpired):
			writeError(w, http.StatusGone, "code_expired", "invitation code expired")
		case errors.Is(err, frienddomain.ErrCodeUsed):
			writeError(w, http.StatusConflict, "code_used", "invitation code already used")
		case errors.Is(err, frienddomain.ErrSelfLink):
			writeError(w, http.StatusConflict, "self_link", "cannot link to yourself")
		case errors.Is(err, frienddomain.ErrPatientAlreadyLinked):
			writeError(w, http.StatusConflict, "patient_already_linked", "patient already has a med-friend")
		case errors.Is(err, frienddomain.ErrFriendAlreadyLinked):
			writeError(w, http.StatusConflict, "friend_already_linked", "med-friend already has a patient")
		default:
			h.log.InternalError("friends.add: redeem failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "med-friend linked"})
}

func (h *Handlers) RemoveForPatient(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	removed, err := h.Friends.RemoveForPatient(r.Context(), userID)
	if err != nil {
		h.log.InternalError("friends.remove: delete failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	message := "no med-friend to remove"
	if removed {
		message = "med-friend removed"
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: message})
}

func (h *Handlers) UnsubscribeFromPatient(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	if err := h.Friends.UnsubscribeFromPatient(r.Context(), userID); err != nil {
		if errors.Is(err, frienddomain.ErrNoPatient) {
			writeError(w, http.StatusNotFound, "no_patient", "no patient assigned")
			return
		}
		h.log.InternalError("friends.unsubscribe: delete failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "unsubscribed from patient"})
}

func (h *Handlers) GetMedFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	info, err := h.Friends.GetMedFriend(r.Context(), userID)
	if err != nil {
		h.log.InternalError("friends.get-med-friend: lookup failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, partnerResponse{UUID: info.UUID, Username: info.Username, Message: info.Message})
}

func (h *Handlers) GetPatient(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	info, err := h.Friends.GetPatient(r.Context(), userID)
	if err != nil {
		h.log.InternalError("friends.get-patient: lookup failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, partnerResponse{UUID: info.UUID, Username: info.Username, Message: info.Message})
}
