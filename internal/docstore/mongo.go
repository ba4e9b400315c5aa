package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type mongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo wraps a connected client. Close disconnects the client.
func NewMongo(client *mongo.Client, name string) Database {
	return &mongoDatabase{client: client, db: client.Database(name)}
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{c: d.db.Collection(name)}
}

func (d *mongoDatabase) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *mongoDatabase) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

type mongoCollection struct {
	c *mongo.Collection
}

func orEmpty(f bson.M) bson.M {
	if f == nil {
		return bson.M{}
	}
	return f
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNoDocuments
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func (m *mongoCollection) FindOne(ctx context.Context, f bson.M, out any) error {
	return translate(m.c.FindOne(ctx, orEmpty(f)).Decode(out))
}

func (m *mongoCollection) Find(ctx context.Context, f bson.M, opts FindOptions, out any) error {
	fo := options.Find()
	if opts.SortField != "" {
		dir := 1
		if opts.SortDesc {
			dir = -1
		}
		fo.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	cur, err := m.c.Find(ctx, orEmpty(f), fo)
	if err != nil {
		return translate(err)
	}
	return cur.All(ctx, out)
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := m.c.InsertOne(ctx, doc)
	return translate(err)
}

func (m *mongoCollection) UpdateOne(ctx context.Context, f bson.M, set bson.M) (int64, error) {
	res, err := m.c.UpdateOne(ctx, orEmpty(f), bson.M{"$set": set})
	if err != nil {
		return 0, translate(err)
	}
	return res.MatchedCount, nil
}

func (m *mongoCollection) DeleteOne(ctx context.Context, f bson.M) (int64, error) {
	res, err := m.c.DeleteOne(ctx, orEmpty(f))
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) DeleteMany(ctx context.Context, f bson.M) (int64, error) {
	res, err := m.c.DeleteMany(ctx, orEmpty(f))
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) CountDocuments(ctx context.Context, f bson.M) (int64, error) {
	n, err := m.c.CountDocuments(ctx, orEmpty(f))
	return n, translate(err)
}

func (m *mongoCollection) Aggregate(ctx context.Context, pipeline []bson.M, out any) error {
	cur, err := m.c.Aggregate(ctx, pipeline)
	if err != nil {
		return translate(err)
	}
	return cur.All(ctx, out)
}

func (m *mongoCollection) CreateIndex(ctx context.Context, idx Index) error {
	keys := make(bson.D, 0, len(idx.Keys))
	for _, k := range idx.Keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		keys = append(keys, bson.E{Key: k.Field, Value: dir})
	}
	_, err := m.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(idx.Unique),
	})
	return err
}
