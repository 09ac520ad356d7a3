// Package mongo provides a MongoDB-backed datastore.Store. Each
// workflow run owns one document in the collection, addressed by its
// run ID; dotted task keys map directly onto MongoDB's dotted update
// paths.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
)

// Ensure Store implements datastore.Store at compile time.
var _ datastore.Store = (*Store)(nil)

// field is the sub-document holding all task data, keeping task keys
// out of the document's top level.
const field = "data"

// Store is a MongoDB implementation of datastore.Store scoped to a
// single workflow run. The caller owns the client lifecycle; Store
// never disconnects it.
type Store struct {
	col    *mongod.Collection
	runID  string
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store over the given collection for one workflow run.
func New(col *mongod.Collection, runID string, opts ...Option) *Store {
	s := &Store{
		col:    col,
		runID:  runID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (any, error) {
	path := field + "." + key

	var doc bson.M
	err := s.col.FindOne(ctx, s.filter(),
		options.FindOne().SetProjection(bson.M{path: 1}),
	).Decode(&doc)
	if errors.Is(err, mongod.ErrNoDocuments) {
		return nil, lightflow.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("datastore/mongo: get %q: %w", key, err)
	}

	v, ok := descend(doc, strings.Split(path, "."))
	if !ok {
		return nil, lightflow.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key, upserting the run document.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	_, err := s.col.UpdateOne(ctx, s.filter(),
		bson.M{"$set": bson.M{field + "." + key: value}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("datastore/mongo: set %q: %w", key, err)
	}
	return nil
}

// Push appends value to the list stored under key.
func (s *Store) Push(ctx context.Context, key string, value any) error {
	_, err := s.col.UpdateOne(ctx, s.filter(),
		bson.M{"$push": bson.M{field + "." + key: value}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("datastore/mongo: push %q: %w", key, err)
	}
	return nil
}

// Extend appends all values to the list stored under key.
func (s *Store) Extend(ctx context.Context, key string, values []any) error {
	_, err := s.col.UpdateOne(ctx, s.filter(),
		bson.M{"$push": bson.M{field + "." + key: bson.M{"$each": values}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("datastore/mongo: extend %q: %w", key, err)
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	filter := s.filter()
	filter[field+"."+key] = bson.M{"$exists": true}

	n, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("datastore/mongo: has %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *Store) filter() bson.M {
	return bson.M{"_id": s.runID}
}

// descend walks a decoded document along the dotted path segments.
func descend(doc bson.M, segments []string) (any, bool) {
	var cur any = doc
	for _, seg := range segments {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
