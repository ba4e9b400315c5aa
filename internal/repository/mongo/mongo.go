// Package mongo implements the repository interfaces on a docstore.Database, which is
// either a MongoDB database or the in-memory substitute.
package mongo

import (
	"context"
	"errors"
	"time"

	"beecok/internal/docstore"
	"beecok/internal/model"
	"beecok/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// NewStore returns the document-store repositories sharing db.
func NewStore(db docstore.Database) repository.Store {
	return repository.Store{
		Users:     &UserStore{c: db.Collection(docstore.Users)},
		Spaces:    &SpaceStore{c: db.Collection(docstore.Spaces)},
		Documents: &DocumentStore{c: db.Collection(docstore.Documents)},
		Chats:     &ChatStore{c: db.Collection(docstore.Chats)},
		Messages:  &MessageStore{c: db.Collection(docstore.Messages)},
		Health:    db,
	}
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNoDocuments):
		return repository.ErrNotFound
	case errors.Is(err, docstore.ErrDuplicateKey):
		return errors.Join(repository.ErrConflict, err)
	}
	return err
}

func findOne[T any](ctx context.Context, c docstore.Collection, f bson.M) (*T, error) {
	var out T
	if err := c.FindOne(ctx, f, &out); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func one(n int64, err error) error {
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type UserStore struct {
	c docstore.Collection
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	return mapError(s.c.InsertOne(ctx, u))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.c, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.c, bson.M{"email": email})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, s.c, bson.M{"username": username})
}

type SpaceStore struct {
	c docstore.Collection
}

var _ repository.SpaceRepository = (*SpaceStore)(nil)

func (s *SpaceStore) Create(ctx context.Context, sp *model.Space) error {
	return mapError(s.c.InsertOne(ctx, sp))
}

func (s *SpaceStore) FindByID(ctx context.Context, userID, id string) (*model.Space, error) {
	return findOne[model.Space](ctx, s.c, bson.M{"_id": id, "user_id": userID})
}

func (s *SpaceStore) FindByName(ctx context.Context, userID, name, excludeID string) (*model.Space, error) {
	f := bson.M{"user_id": userID, "name": name}
	if excludeID != "" {
		f["_id"] = bson.M{"$ne": excludeID}
	}
	return findOne[model.Space](ctx, s.c, f)
}

func (s *SpaceStore) ListByUser(ctx context.Context, userID string) ([]model.Space, error) {
	out := make([]model.Space, 0)
	err := s.c.Find(ctx, bson.M{"user_id": userID},
		docstore.FindOptions{SortField: "created_at", SortDesc: true, Limit: repository.MaxSpaces}, &out)
	return out, mapError(err)
}

func (s *SpaceStore) Update(ctx context.Context, sp *model.Space) error {
	return one(s.c.UpdateOne(ctx, bson.M{"_id": sp.ID}, bson.M{
		"name":        sp.Name,
		"description": sp.Description,
		"color":       sp.Color,
		"updated_at":  sp.UpdatedAt,
	}))
}

func (s *SpaceStore) Delete(ctx context.Context, id string) error {
	return one(s.c.DeleteOne(ctx, bson.M{"_id": id}))
}

func (s *SpaceStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID})
	return n, mapError(err)
}

type DocumentStore struct {
	c docstore.Collection
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

func (s *DocumentStore) Create(ctx context.Context, d *model.Document) error {
	return mapError(s.c.InsertOne(ctx, d))
}

func (s *DocumentStore) FindByID(ctx context.Context, spaceID, id string) (*model.Document, error) {
	return findOne[model.Document](ctx, s.c, bson.M{"_id": id, "space_id": spaceID})
}

func (s *DocumentStore) FindByName(ctx context.Context, spaceIDs []string, filename string) (*model.Document, error) {
	if len(spaceIDs) == 0 {
		return nil, repository.ErrNotFound
	}
	return findOne[model.Document](ctx, s.c, bson.M{
		"original_file_name": filename,
		"space_id":           bson.M{"$in": spaceIDs},
	})
}

func (s *DocumentStore) ListBySpace(ctx context.Context, spaceID string) ([]model.Document, error) {
	out := make([]model.Document, 0)
	err := s.c.Find(ctx, bson.M{"space_id": spaceID},
		docstore.FindOptions{SortField: "uploaded_at", SortDesc: true, Limit: repository.MaxDocuments}, &out)
	return out, mapError(err)
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	return one(s.c.DeleteOne(ctx, bson.M{"_id": id}))
}

func (s *DocumentStore) DeleteBySpace(ctx context.Context, spaceID string) (int64, error) {
	n, err := s.c.DeleteMany(ctx, bson.M{"space_id": spaceID})
	return n, mapError(err)
}

func (s *DocumentStore) SpaceTotals(ctx context.Context, spaceID string) (repository.Totals, error) {
	return s.totals(ctx, bson.M{"space_id": spaceID})
}

func (s *DocumentStore) UserTotals(ctx context.Context, userID string) (repository.Totals, error) {
	return s.totals(ctx, bson.M{"user_id": userID})
}

func (s *DocumentStore) totals(ctx context.Context, match bson.M) (repository.Totals, error) {
	var rows []struct {
		Count     int64 `bson:"count"`
		SizeBytes int64 `bson:"total_size"`
	}
	err := s.c.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": nil, "total_size": bson.M{"$sum": "$size_in_bytes"}, "count": bson.M{"$sum": 1}}},
	}, &rows)
	if err != nil {
		return repository.Totals{}, mapError(err)
	}
	if len(rows) == 0 {
		return repository.Totals{}, nil
	}
	return repository.Totals{Count: rows[0].Count, SizeBytes: rows[0].SizeBytes}, nil
}

type ChatStore struct {
	c docstore.Collection
}

var _ repository.ChatRepository = (*ChatStore)(nil)

func (s *ChatStore) Create(ctx context.Context, c *model.Chat) error {
	return mapError(s.c.InsertOne(ctx, c))
}

func (s *ChatStore) FindByID(ctx context.Context, userID, id string) (*model.Chat, error) {
	return findOne[model.Chat](ctx, s.c, bson.M{"_id": id, "user_id": userID})
}

func (s *ChatStore) ListByUser(ctx context.Context, userID string) ([]model.Chat, error) {
	out := make([]model.Chat, 0)
	err := s.c.Find(ctx, bson.M{"user_id": userID},
		docstore.FindOptions{SortField: "updated_at", SortDesc: true, Limit: repository.MaxChats}, &out)
	return out, mapError(err)
}

func (s *ChatStore) Touch(ctx context.Context, id string, at time.Time) error {
	return one(s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"updated_at": at}))
}

func (s *ChatStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID})
	return n, mapError(err)
}

type MessageStore struct {
	c docstore.Collection
}

var _ repository.MessageRepository = (*MessageStore)(nil)

func (s *MessageStore) Create(ctx context.Context, m *model.Message) error {
	return mapError(s.c.InsertOne(ctx, m))
}

func (s *MessageStore) ListByChat(ctx context.Context, chatID string) ([]model.Message, error) {
	out := make([]model.Message, 0)
	err := s.c.Find(ctx, bson.M{"chat_id": chatID},
		docstore.FindOptions{SortField: "timestamp", Limit: repository.MaxMessages}, &out)
	return out, mapError(err)
}
