package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	userdomain "maisafe-go/internal/domain/user"
)

type contextKey int

const userIDKey contextKey = iota

// Authenticator verifies a uuid/credential pair from HTTP Basic auth.
type Authenticator interface {
	Authenticate(ctx context.Context, uuid, password string) (*userdomain.User, error)
}

type BasicAuth struct {
	users Authenticator
}

func NewBasicAuth(users Authenticator) *BasicAuth {
	return &BasicAuth{users: users}
}

func (a *BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		account, err := a.users.Authenticate(r.Context(), username, password)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := WithUserID(r.Context(), account.UUID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    "invalid_credentials",
			"message": "invalid credentials",
		},
	})
}
