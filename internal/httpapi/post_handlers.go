package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"postboard.org/internal/audit"
	"postboard.org/internal/auth"
	"postboard.org/internal/store"
)

type postResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Content    string   `json:"content"`
	Categories []string `json:"categories"`
}

func toPostResponse(p *store.Post) postResponse {
	cats := p.Categories
	if cats == nil {
		cats = []string{}
	}
	return postResponse{
		ID:         p.ID,
		Title:      p.Title,
		Author:     p.Author,
		Content:    p.Content,
		Categories: cats,
	}
}

type createPostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Categories []string `json:"categories"`
}

type updatePostRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Categories *[]string `json:"categories"`
}

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.Posts().List(r.Context())
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing identity")
		return
	}

	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.Title == "":
		writeError(w, r, http.StatusBadRequest, "title is required")
		return
	case strings.TrimSpace(req.Content) == "":
		writeError(w, r, http.StatusBadRequest, "content is required")
		return
	case len(req.Categories) == 0:
		writeError(w, r, http.StatusBadRequest, "at least one category is required")
		return
	}

	// The token may outlive the account; refuse posts from deleted users.
	if _, err := a.store.Users().Find(r.Context(), identity.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			writeError(w, r, http.StatusBadRequest, "author account no longer exists")
			return
		}
		a.handleStoreError(w, r, err)
		return
	}

	p := &store.Post{
		Title:      req.Title,
		Author:     identity.UserID,
		Content:    req.Content,
		Categories: req.Categories,
	}
	if err := a.store.Posts().Create(r.Context(), p); err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "post.created", map[string]any{
		"post_id": p.ID,
		"author":  p.Author,
	})
	writeJSON(w, http.StatusCreated, toPostResponse(p))
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.Posts().Find(r.Context(), r.PathValue("id"))
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

func (a *API) handleListPostsByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.Posts().ListByAuthor(r.Context(), r.PathValue("id"))
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing identity")
		return
	}

	p, err := a.store.Posts().Find(r.Context(), id)
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	if !auth.CanMutate(identity, p.Author) {
		writeError(w, r, http.StatusForbidden, "you may only modify your own posts")
		return
	}

	var req updatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, r, http.StatusBadRequest, "title must not be empty")
		return
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		writeError(w, r, http.StatusBadRequest, "content must not be empty")
		return
	}
	if req.Categories != nil && len(*req.Categories) == 0 {
		writeError(w, r, http.StatusBadRequest, "categories must not be empty")
		return
	}

	upd := store.PostUpdate{
		Title:      req.Title,
		Content:    req.Content,
		Categories: req.Categories,
	}
	if upd.Empty() {
		writeError(w, r, http.StatusBadRequest, "no fields to update")
		return
	}

	modified, err := a.store.Posts().Update(r.Context(), id, upd)
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	status := statusUnmodified
	if modified {
		status = statusSuccess
		_ = audit.LogEvent(r.Context(), "post.updated", map[string]any{
			"post_id": id,
		})
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (a *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthorized(w, r, "missing identity")
		return
	}

	p, err := a.store.Posts().Find(r.Context(), id)
	if err != nil {
		a.handleStoreError(w, r, err)
		return
	}
	if !auth.CanMutate(identity, p.Author) {
		writeError(w, r, http.StatusForbidden, "you may only delete your own posts")
		return
	}

	if err := a.store.Posts().Delete(r.Context(), id); err != nil {
		a.handleStoreError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "post.deleted", map[string]any{
		"post_id": id,
		"author":  p.Author,
	})
	writeJSON(w, http.StatusOK, statusResponse{Status: statusSuccess})
}
