package auth

import (
	"context"
	"testing"

	"postboard.org/internal/store"
)

// fakeUserStore serves a fixed set of users; only the read methods matter
// for credential checks.
type fakeUserStore struct {
	users []*store.User
}

func (f *fakeUserStore) Create(ctx context.Context, u *store.User) error { panic("not used") }

func (f *fakeUserStore) Find(ctx context.Context, id string) (*store.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]*store.User, error) { return f.users, nil }

func (f *fakeUserStore) Update(ctx context.Context, id string, upd store.UserUpdate) (bool, error) {
	panic("not used")
}

func (f *fakeUserStore) Delete(ctx context.Context, id string) error { panic("not used") }

func seededService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword("lj123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return NewService(&fakeUserStore{users: []*store.User{{
		ID:           "659c83c57198563257d12dfa",
		Username:     "leroyjenkins",
		PasswordHash: hash,
		Email:        "lj@lj.com",
		Name:         "Leeeeroy Jenkins",
		Age:          24,
		Admin:        false,
	}}})
}

func TestLoginSuccess(t *testing.T) {
	svc := seededService(t)

	identity, err := svc.Login(context.Background(), "leroyjenkins", "lj123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := Identity{
		UserID:   "659c83c57198563257d12dfa",
		Username: "leroyjenkins",
		Email:    "lj@lj.com",
		Age:      24,
		Admin:    false,
	}
	if identity != want {
		t.Fatalf("unexpected identity: got %+v want %+v", identity, want)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := seededService(t)

	wrongPass, errPass := svc.Login(context.Background(), "leroyjenkins", "wrong")
	unknown, errUser := svc.Login(context.Background(), "nobody", "lj123")

	if errPass != ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errPass)
	}
	if errUser != ErrInvalidCredentials {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", errUser)
	}
	if wrongPass != unknown {
		t.Fatalf("failure shapes differ: %+v vs %+v", wrongPass, unknown)
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	svc := seededService(t)
	if _, err := svc.Login(context.Background(), "", "lj123"); err != ErrInvalidCredentials {
		t.Fatalf("empty username: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "leroyjenkins", ""); err != ErrInvalidCredentials {
		t.Fatalf("empty password: expected ErrInvalidCredentials, got %v", err)
	}
}
