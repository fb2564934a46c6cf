package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken indicates a missing, malformed, tampered or expired
	// bearer token.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrMissingSecret means the signing secret is not configured. It is a
	// startup-time failure, never a per-request one.
	ErrMissingSecret = errors.New("auth: signing secret is not configured")
)
