// Package store defines the persistence boundary for users and posts.
// Implementations live in the mongo, pg and mem subpackages and are selected
// once at startup; the rest of the service only sees these interfaces.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means no record matches the given identifier.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidID means the identifier is not well-formed for the backend.
	ErrInvalidID = errors.New("store: invalid id")
	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("store: already exists")
)

// User is the stored credential record. PasswordHash never leaves the
// service layer; responses are built from the remaining fields.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	Name         string
	Age          int
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Post is an authored document. Author holds the owning user's id in its
// canonical string form.
type Post struct {
	ID         string
	Title      string
	Author     string
	Content    string
	Categories []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserUpdate describes a partial user update. Nil fields are left untouched.
type UserUpdate struct {
	PasswordHash *string
	Email        *string
	Name         *string
	Age          *int
}

// Empty reports whether the update would change nothing by construction.
func (u UserUpdate) Empty() bool {
	return u.PasswordHash == nil && u.Email == nil && u.Name == nil && u.Age == nil
}

// PostUpdate describes a partial post update. Nil fields are left untouched.
type PostUpdate struct {
	Title      *string
	Content    *string
	Categories *[]string
}

// Empty reports whether the update would change nothing by construction.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Categories == nil
}

// UserStore manages credential records. Create fills ID and timestamps and
// returns ErrConflict when the username is taken. Update reports whether the
// record actually changed, so callers can distinguish a no-op write.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (modified bool, err error)
	Delete(ctx context.Context, id string) error
}

// PostStore manages posts.
type PostStore interface {
	Create(ctx context.Context, p *Post) error
	Find(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)
	Update(ctx context.Context, id string, upd PostUpdate) (modified bool, err error)
	Delete(ctx context.Context, id string) error
}

// Store bundles the record stores behind one handle with lifecycle hooks.
type Store interface {
	Users() UserStore
	Posts() PostStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
