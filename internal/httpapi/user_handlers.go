package httpapi

import (
	"net/http"
	"net/mail"
	"strings"

	"postboard.org/internal/audit"
	"postboard.org/internal/auth"
	"postboard.org/internal/store"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Age      int    `json:"age"`
	Admin    bool   `json:"admin"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Age:      u.Age,
		Admin:    u.Admin,
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
}

type updateUserRequest struct {
	Password *string `json:"password"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.Users().List(r.Context())
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		writeError(w, r, http.StatusBadRequest, "username is required")
		return
	case req.Password == "":
		writeError(w, r, http.StatusBadRequest, "password is required")
		return
	case req.Email == "":
		writeError(w, r, http.StatusBadRequest, "email is required")
		return
	case req.Age <= 0:
		writeError(w, r, http.StatusBadRequest, "age must be positive")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, "email is not valid")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.log.Error("password hash failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	u := &store.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Age:          req.Age,
	}
	if err := a.store.Users().Create(r.Context(), u); err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.created", map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
	})
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.store.Users().Find(r.Context(), r.PathValue("id"))
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing identity")
		return
	}
	if !auth.CanMutate(identity, id) {
		writeError(w, r, http.StatusForbidden, "you may only modify your own account")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd := store.UserUpdate{
		Email: req.Email,
		Name:  req.Name,
		Age:   req.Age,
	}
	if req.Password != nil {
		if *req.Password == "" {
			writeError(w, r, http.StatusBadRequest, "password must not be empty")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			a.log.Error("password hash failed", "error", err)
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		upd.PasswordHash = &hash
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			writeError(w, r, http.StatusBadRequest, "email is not valid")
			return
		}
	}
	if req.Age != nil && *req.Age <= 0 {
		writeError(w, r, http.StatusBadRequest, "age must be positive")
		return
	}
	if upd.Empty() {
		writeError(w, r, http.StatusBadRequest, "no fields to update")
		return
	}

	modified, err := a.store.Users().Update(r.Context(), id, upd)
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	status := statusUnmodified
	if modified {
		status = statusSuccess
		_ = audit.LogEvent(r.Context(), "user.updated", map[string]any{
			"user_id": id,
		})
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing identity")
		return
	}
	if !auth.CanDeleteUser(identity) {
		writeError(w, r, http.StatusForbidden, "only admins may delete accounts")
		return
	}

	if err := a.store.Users().Delete(r.Context(), id); err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.deleted", map[string]any{
		"user_id": id,
	})
	writeJSON(w, http.StatusOK, statusResponse{Status: statusSuccess})
}
