// Package mongo provides a MongoDB-backed base store: column lookup
// and scope counting over a collection of documents keyed by path.
package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quarry/internal/store"
)

// lookupTimeout bounds single-column lookups issued from cursor
// iteration, which has no context of its own.
const lookupTimeout = 5 * time.Second

// Store is a MongoDB-backed base store. Documents live in one
// collection with the store path as _id and their columns as
// top-level fields.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, database, collection string) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Get returns the columns of the document at path.
func (s *Store) Get(ctx context.Context, path string) (map[string]any, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	delete(doc, "_id")
	return doc, nil
}

// Value looks up one column of the document at path. It satisfies the
// fulltext layer's column-source contract; misses and lookup errors
// both report "no value".
func (s *Store) Value(path, column string) (any, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	doc, err := s.Get(ctx, path)
	if err != nil {
		return nil, false
	}
	v, ok := doc[column]
	return v, ok
}

// CountScope counts documents at or below the scope path.
func (s *Store) CountScope(ctx context.Context, scope string) (int64, error) {
	filter := bson.M{"_id": bson.M{
		"$regex": "^" + regexp.QuoteMeta(scope) + "(/|$)",
	}}
	return s.coll.CountDocuments(ctx, filter)
}
