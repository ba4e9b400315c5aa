// Package docstore defines the document-collection capability the service persists
// through, with a MongoDB implementation and an in-memory one for local development.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNoDocuments  = errors.New("docstore: no documents in result")
	ErrDuplicateKey = errors.New("docstore: duplicate key")
)

// Collection names.
const (
	Users     = "users"
	Spaces    = "spaces"
	Documents = "documents"
	Chats     = "chats"
	Messages  = "messages"
)

// FindOptions controls ordering and size of Find results. An empty SortField keeps
// the store's natural order.
type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
}

type IndexKey struct {
	Field string
	Desc  bool
}

type Index struct {
	Keys   []IndexKey
	Unique bool
}

// Collection is the subset of a MongoDB collection the repositories rely on.
// Filters use MongoDB query syntax; implementations must support exact matches and
// the $eq, $ne and $in operators. out arguments follow bson decoding rules: a pointer
// to a struct for FindOne and a pointer to a slice for Find and Aggregate.
type Collection interface {
	FindOne(ctx context.Context, filter bson.M, out any) error
	Find(ctx context.Context, filter bson.M, opts FindOptions, out any) error
	InsertOne(ctx context.Context, doc any) error
	// UpdateOne applies set to the first matching document and reports how many matched.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
	// Aggregate runs a pipeline. The in-memory store supports $match and $group with $sum.
	Aggregate(ctx context.Context, pipeline []bson.M, out any) error
	CreateIndex(ctx context.Context, idx Index) error
}

type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// EnsureIndexes declares the indexes the repositories expect.
func EnsureIndexes(ctx context.Context, db Database) error {
	specs := []struct {
		coll string
		idx  Index
	}{
		{Users, Index{Keys: []IndexKey{{Field: "email"}}, Unique: true}},
		{Users, Index{Keys: []IndexKey{{Field: "username"}}, Unique: true}},
		{Spaces, Index{Keys: []IndexKey{{Field: "user_id"}, {Field: "created_at", Desc: true}}}},
		{Spaces, Index{Keys: []IndexKey{{Field: "user_id"}, {Field: "name"}}, Unique: true}},
		{Documents, Index{Keys: []IndexKey{{Field: "space_id"}, {Field: "uploaded_at", Desc: true}}}},
		{Documents, Index{Keys: []IndexKey{{Field: "user_id"}, {Field: "uploaded_at", Desc: true}}}},
		{Documents, Index{Keys: []IndexKey{{Field: "space_id"}, {Field: "original_file_name"}}, Unique: true}},
		{Chats, Index{Keys: []IndexKey{{Field: "user_id"}, {Field: "created_at", Desc: true}}}},
		{Messages, Index{Keys: []IndexKey{{Field: "chat_id"}, {Field: "timestamp"}}}},
	}
	for _, s := range specs {
		if err := db.Collection(s.coll).CreateIndex(ctx, s.idx); err != nil {
			return err
		}
	}
	return nil
}
