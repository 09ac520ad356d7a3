// Package datastore defines the persistent key/value document store
// tasks use to share data across a workflow run, with pluggable
// backends under datastore/memory and datastore/mongo.
package datastore

import "context"

// Store is the per-workflow persistent document a task reads and writes
// during its run. Keys are dot-separated paths into a nested document
// ("stats.row_count"). Implementations must be safe for concurrent use:
// distinct tasks of one workflow may access the store simultaneously.
type Store interface {
	// Get returns the value stored under key.
	// Returns lightflow.ErrKeyNotFound if the key is absent.
	Get(ctx context.Context, key string) (any, error)

	// Set stores value under key, replacing any existing value and
	// creating intermediate path segments as needed.
	Set(ctx context.Context, key string, value any) error

	// Push appends value to the list stored under key, creating the
	// list if the key is absent.
	Push(ctx context.Context, key string, value any) error

	// Extend appends all values to the list stored under key, creating
	// the list if the key is absent.
	Extend(ctx context.Context, key string, values []any) error

	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)
}
