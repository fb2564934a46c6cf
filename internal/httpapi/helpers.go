package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"postboard.org/internal/store"
)

type statusResponse struct {
	Status string `json:"status"`
}

const (
	statusSuccess    = "Success"
	statusUnmodified = "Nothing was modified"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleStoreError maps persistence errors onto status codes.
func (a *API) handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, r, http.StatusBadRequest, "the id is not valid")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "no record matches this id")
	case errors.Is(err, store.ErrConflict):
		writeError(w, r, http.StatusConflict, "already exists")
	default:
		a.log.Error("store error", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
