package auth

import (
	"context"
	"strings"

	"postboard.org/internal/store"
)

// Service checks username/password credentials against the credential
// store. It only ever reads; user records are written elsewhere.
type Service struct {
	users store.UserStore
}

// NewService constructs the credential checker with its store handle passed
// explicitly.
func NewService(users store.UserStore) *Service {
	return &Service{users: users}
}

// Login verifies the credentials and returns the caller's identity. Unknown
// usernames and wrong passwords both come back as ErrInvalidCredentials so
// the response shape cannot be used to probe for accounts.
func (s *Service) Login(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Age:      user.Age,
		Admin:    user.Admin,
	}, nil
}
