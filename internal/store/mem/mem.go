// Package mem provides an in-memory store used by tests and the "mem"
// backend for local runs. Identifiers follow the 24-hex-char shape of the
// document backend so handler-level id validation behaves the same.
package mem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"postboard.org/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]store.User
	posts map[string]store.Post
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[string]store.User),
		posts: make(map[string]store.Post),
	}
}

func (s *Store) Users() store.UserStore { return (*userStore)(s) }
func (s *Store) Posts() store.PostStore { return (*postStore)(s) }

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

func newID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func validID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// Users -------------------------------------------------------------------

type userStore Store

func (s *userStore) Create(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *userStore) Find(ctx context.Context, id string) (*store.User, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) List(ctx context.Context) ([]*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.User, 0, len(s.users))
	for _, u := range s.users {
		copied := u
		out = append(out, &copied)
	}
	return out, nil
}

func (s *userStore) Update(ctx context.Context, id string, upd store.UserUpdate) (bool, error) {
	if !validID(id) {
		return false, store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, store.ErrNotFound
	}
	modified := false
	if upd.PasswordHash != nil && *upd.PasswordHash != u.PasswordHash {
		u.PasswordHash = *upd.PasswordHash
		modified = true
	}
	if upd.Email != nil && *upd.Email != u.Email {
		u.Email = *upd.Email
		modified = true
	}
	if upd.Name != nil && *upd.Name != u.Name {
		u.Name = *upd.Name
		modified = true
	}
	if upd.Age != nil && *upd.Age != u.Age {
		u.Age = *upd.Age
		modified = true
	}
	if modified {
		u.UpdatedAt = time.Now().UTC()
		s.users[id] = u
	}
	return modified, nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Posts -------------------------------------------------------------------

type postStore Store

func (s *postStore) Create(ctx context.Context, p *store.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.posts[p.ID] = clonePost(*p)
	return nil
}

func (s *postStore) Find(ctx context.Context, id string) (*store.Post, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (s *postStore) List(ctx context.Context) ([]*store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Post, 0, len(s.posts))
	for _, p := range s.posts {
		copied := clonePost(p)
		out = append(out, &copied)
	}
	return out, nil
}

func (s *postStore) ListByAuthor(ctx context.Context, authorID string) ([]*store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.Post
	for _, p := range s.posts {
		if p.Author == authorID {
			copied := clonePost(p)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *postStore) Update(ctx context.Context, id string, upd store.PostUpdate) (bool, error) {
	if !validID(id) {
		return false, store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return false, store.ErrNotFound
	}
	modified := false
	if upd.Title != nil && *upd.Title != p.Title {
		p.Title = *upd.Title
		modified = true
	}
	if upd.Content != nil && *upd.Content != p.Content {
		p.Content = *upd.Content
		modified = true
	}
	if upd.Categories != nil && !equalStrings(*upd.Categories, p.Categories) {
		p.Categories = append([]string(nil), *upd.Categories...)
		modified = true
	}
	if modified {
		p.UpdatedAt = time.Now().UTC()
		s.posts[id] = p
	}
	return modified, nil
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func clonePost(p store.Post) store.Post {
	p.Categories = append([]string(nil), p.Categories...)
	return p
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
