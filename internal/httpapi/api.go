// Package httpapi is the HTTP layer: routing, validation and the mapping
// of service errors onto status codes. Route guards are plain middleware
// composed here, not annotations.
package httpapi

import (
	"log/slog"
	"net/http"

	"postboard.org/internal/auth"
	"postboard.org/internal/obs"
	"postboard.org/internal/store"
)

const defaultMaxBodyBytes = 1 << 20

// API wires handlers to their collaborators. Everything is passed in once
// at construction; there is no service lookup at request time.
type API struct {
	mux     *http.ServeMux
	log     *slog.Logger
	store   store.Store
	auth    *auth.Service
	tokens  *auth.Tokens
	version string

	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

func New(log *slog.Logger, st store.Store, authSvc *auth.Service, tokens *auth.Tokens, version string) *API {
	a := &API{
		mux:          http.NewServeMux(),
		log:          log,
		store:        st,
		auth:         authSvc,
		tokens:       tokens,
		version:      version,
		rateBurst:    50,
		ratePerSec:   25,
		maxBodyBytes: defaultMaxBodyBytes,
	}

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReady)
	a.mux.HandleFunc("GET /v1/info", a.handleInfo)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)

	a.mux.HandleFunc("GET /v1/users", a.handleListUsers)
	a.mux.HandleFunc("POST /v1/users", a.handleCreateUser)
	a.mux.HandleFunc("GET /v1/users/{id}", a.handleGetUser)
	a.mux.Handle("PUT /v1/users/{id}", a.requireAuth(http.HandlerFunc(a.handleUpdateUser)))
	a.mux.Handle("DELETE /v1/users/{id}", a.requireAuth(http.HandlerFunc(a.handleDeleteUser)))

	a.mux.HandleFunc("GET /v1/posts", a.handleListPosts)
	a.mux.Handle("POST /v1/posts", a.requireAuth(http.HandlerFunc(a.handleCreatePost)))
	a.mux.HandleFunc("GET /v1/posts/{id}", a.handleGetPost)
	a.mux.HandleFunc("GET /v1/posts/user/{id}", a.handleListPostsByUser)
	a.mux.Handle("PUT /v1/posts/{id}", a.requireAuth(http.HandlerFunc(a.handleUpdatePost)))
	a.mux.Handle("DELETE /v1/posts/{id}", a.requireAuth(http.HandlerFunc(a.handleDeletePost)))

	return a
}

// SetLimits overrides the rate limiting and body size knobs.
func (a *API) SetLimits(burst, perSec int, maxBody int64) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSec > 0 {
		a.ratePerSec = perSec
	}
	if maxBody > 0 {
		a.maxBodyBytes = maxBody
	}
}

// Handler returns the complete middleware stack around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = obs.Instrument(h)
	h = a.requestLog(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return h
}
