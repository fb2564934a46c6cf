// Package mongo implements the store interfaces on MongoDB, the document
// database backing the users and posts collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"postboard.org/internal/store"
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	posts  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to MongoDB and prepares the collections. A unique index on
// username backs the ErrConflict contract of UserStore.Create.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection("users"),
		posts:  db.Collection("posts"),
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) Users() store.UserStore { return &userStore{coll: s.users} }
func (s *Store) Posts() store.PostStore { return &postStore{coll: s.posts} }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrInvalidID
	}
	return oid, nil
}

// Users -------------------------------------------------------------------

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name,omitempty"`
	Age          int                `bson:"age"`
	Admin        bool               `bson:"isAdmin"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toUser() *store.User {
	return &store.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Email:        d.Email,
		Name:         d.Name,
		Age:          d.Age,
		Admin:        d.Admin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type userStore struct {
	coll *mongo.Collection
}

func (s *userStore) Create(ctx context.Context, u *store.User) error {
	now := time.Now().UTC()
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Name:         u.Name,
		Age:          u.Age,
		Admin:        u.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *userStore) Find(ctx context.Context, id string) (*store.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return doc.toUser(), nil
}

func (s *userStore) List(ctx context.Context) ([]*store.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*store.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toUser())
	}
	return out, nil
}

func (s *userStore) Update(ctx context.Context, id string, upd store.UserUpdate) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	var current userDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, store.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	// Only changed fields go into $set so a no-op write stays reportable
	// as unmodified.
	set := bson.M{}
	if upd.PasswordHash != nil && *upd.PasswordHash != current.PasswordHash {
		set["password"] = *upd.PasswordHash
	}
	if upd.Email != nil && *upd.Email != current.Email {
		set["email"] = *upd.Email
	}
	if upd.Name != nil && *upd.Name != current.Name {
		set["name"] = *upd.Name
	}
	if upd.Age != nil && *upd.Age != current.Age {
		set["age"] = *upd.Age
	}
	if len(set) == 0 {
		return false, nil
	}
	set["updatedAt"] = time.Now().UTC()
	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, store.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
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

// Posts -------------------------------------------------------------------

type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Author     primitive.ObjectID `bson:"author"`
	Content    string             `bson:"content"`
	Categories []string           `bson:"categories"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d postDoc) toPost() *store.Post {
	return &store.Post{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Author:     d.Author.Hex(),
		Content:    d.Content,
		Categories: d.Categories,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type postStore struct {
	coll *mongo.Collection
}

func (s *postStore) Create(ctx context.Context, p *store.Post) error {
	author, err := parseID(p.Author)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := postDoc{
		ID:         primitive.NewObjectID(),
		Title:      p.Title,
		Author:     author,
		Content:    p.Content,
		Categories: p.Categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *postStore) Find(ctx context.Context, id string) (*store.Post, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.toPost(), nil
}

func (s *postStore) List(ctx context.Context) ([]*store.Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *postStore) ListByAuthor(ctx context.Context, authorID string) ([]*store.Post, error) {
	author, err := parseID(authorID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{"author": author})
}

func (s *postStore) find(ctx context.Context, filter bson.M) ([]*store.Post, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	out := make([]*store.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toPost())
	}
	return out, nil
}

func (s *postStore) Update(ctx context.Context, id string, upd store.PostUpdate) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	var current postDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, store.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	set := bson.M{}
	if upd.Title != nil && *upd.Title != current.Title {
		set["title"] = *upd.Title
	}
	if upd.Content != nil && *upd.Content != current.Content {
		set["content"] = *upd.Content
	}
	if upd.Categories != nil && !equalStrings(*upd.Categories, current.Categories) {
		set["categories"] = *upd.Categories
	}
	if len(set) == 0 {
		return false, nil
	}
	set["updatedAt"] = time.Now().UTC()
	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, store.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
