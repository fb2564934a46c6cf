package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"postboard.org/internal/audit"
	"postboard.org/internal/auth"
	"postboard.org/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	id, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		obs.ObserveLogin("failure")
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Uniform message so callers cannot probe which usernames exist.
			writeError(w, r, http.StatusUnauthorized, "invalid username or password")
			return
		}
		a.log.Error("login failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	token, expiresAt, err := a.tokens.Issue(id)
	if err != nil {
		obs.ObserveLogin("failure")
		a.log.Error("token issue failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	obs.ObserveLogin("success")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"username":   id.Username,
		"user_id":    id.UserID,
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
