// Package pg implements the store interfaces on PostgreSQL through the
// database/sql interface of the pgx driver. Row identifiers are ULIDs.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"postboard.org/internal/ids"
	"postboard.org/internal/store"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL with pool defaults tuned for a small API.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle; used by tests.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() store.UserStore { return &userStore{db: s.db} }
func (s *Store) Posts() store.PostStore { return &postStore{db: s.db} }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Users -------------------------------------------------------------------

type userStore struct {
	db *sql.DB
}

const userColumns = `id, username, password_hash, email, name, age, admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Name, &u.Age, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userStore) Create(ctx context.Context, u *store.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, username, password_hash, email, name, age, admin, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$8)
	`, u.ID, u.Username, u.PasswordHash, u.Email, u.Name, u.Age, u.Admin, now)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *userStore) Find(ctx context.Context, id string) (*store.User, error) {
	if !ids.Valid(id) {
		return nil, store.ErrInvalidID
	}
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where username=$1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (s *userStore) List(ctx context.Context) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by created_at asc`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *userStore) Update(ctx context.Context, id string, upd store.UserUpdate) (bool, error) {
	if !ids.Valid(id) {
		return false, store.ErrInvalidID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1 for update`, id)
	current, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return false, store.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("lock user: %w", err)
	}

	modified := false
	if upd.PasswordHash != nil && *upd.PasswordHash != current.PasswordHash {
		current.PasswordHash = *upd.PasswordHash
		modified = true
	}
	if upd.Email != nil && *upd.Email != current.Email {
		current.Email = *upd.Email
		modified = true
	}
	if upd.Name != nil && *upd.Name != current.Name {
		current.Name = *upd.Name
		modified = true
	}
	if upd.Age != nil && *upd.Age != current.Age {
		current.Age = *upd.Age
		modified = true
	}
	if !modified {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		update users set password_hash=$2, email=$3, name=$4, age=$5, updated_at=now()
		where id=$1
	`, id, current.PasswordHash, current.Email, current.Name, current.Age)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return true, tx.Commit()
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return store.ErrInvalidID
	}
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Posts -------------------------------------------------------------------

type postStore struct {
	db *sql.DB
}

const postColumns = `id, title, author, content, categories, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*store.Post, error) {
	var (
		p          store.Post
		categories []byte
	)
	err := row.Scan(&p.ID, &p.Title, &p.Author, &p.Content, &categories, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(categories, &p.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return &p, nil
}

func (s *postStore) Create(ctx context.Context, p *store.Post) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		insert into posts(id, title, author, content, categories, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$6)
	`, p.ID, p.Title, p.Author, p.Content, categories, now)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *postStore) Find(ctx context.Context, id string) (*store.Post, error) {
	if !ids.Valid(id) {
		return nil, store.ErrInvalidID
	}
	row := s.db.QueryRowContext(ctx, `select `+postColumns+` from posts where id=$1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (s *postStore) List(ctx context.Context) ([]*store.Post, error) {
	rows, err := s.db.QueryContext(ctx, `select `+postColumns+` from posts order by created_at asc`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

func (s *postStore) ListByAuthor(ctx context.Context, authorID string) ([]*store.Post, error) {
	if !ids.Valid(authorID) {
		return nil, store.ErrInvalidID
	}
	rows, err := s.db.QueryContext(ctx, `select `+postColumns+` from posts where author=$1 order by created_at asc`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*store.Post, error) {
	defer rows.Close()
	var out []*store.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *postStore) Update(ctx context.Context, id string, upd store.PostUpdate) (bool, error) {
	if !ids.Valid(id) {
		return false, store.ErrInvalidID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `select `+postColumns+` from posts where id=$1 for update`, id)
	current, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return false, store.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("lock post: %w", err)
	}

	modified := false
	if upd.Title != nil && *upd.Title != current.Title {
		current.Title = *upd.Title
		modified = true
	}
	if upd.Content != nil && *upd.Content != current.Content {
		current.Content = *upd.Content
		modified = true
	}
	if upd.Categories != nil && !equalStrings(*upd.Categories, current.Categories) {
		current.Categories = *upd.Categories
		modified = true
	}
	if !modified {
		return false, tx.Commit()
	}

	categories, err := json.Marshal(current.Categories)
	if err != nil {
		return false, fmt.Errorf("encode categories: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		update posts set title=$2, content=$3, categories=$4, updated_at=now()
		where id=$1
	`, id, current.Title, current.Content, categories)
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return true, tx.Commit()
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return store.ErrInvalidID
	}
	res, err := s.db.ExecContext(ctx, `delete from posts where id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
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
