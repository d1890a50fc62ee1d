package handler

import (
	"errors"
	"net/http"
	"strings"

	userdomain "maisafe-go/internal/domain/user"
)

type registerRequest struct {
	Username string `json:"username"`
}

type registerResponse struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and returns the generated credential once.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username is required")
		return
	}

	account, password, err := h.Users.Register(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, userdomain.ErrUsernameTaken) {
			h.log.BusinessError("auth.register: username taken", err, "username", req.Username)
			writeError(w, http.StatusConflict, "username_taken", "username is already taken")
			return
		}
		h.log.InternalError("auth.register: create user failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UUID:     account.UUID,
		Username: account.Username,
		Password: password,
	})
}
