// Package memory provides a fully in-memory datastore.Store. Safe for
// concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/portrain/lightflow"
	"github.com/portrain/lightflow/datastore"
)

// Ensure Store implements datastore.Store at compile time.
var _ datastore.Store = (*Store)(nil)

// Store is a mutex-guarded nested-map implementation of datastore.Store.
type Store struct {
	mu  sync.RWMutex
	doc map[string]any
}

// New returns a new empty Store.
func New() *Store {
	return &Store{doc: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, leaf, ok := s.walk(key, false)
	if !ok {
		return nil, lightflow.ErrKeyNotFound
	}
	v, exists := parent[leaf]
	if !exists {
		return nil, lightflow.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key, creating intermediate maps as needed.
func (s *Store) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, leaf, _ := s.walk(key, true)
	parent[leaf] = value
	return nil
}

// Push appends value to the list stored under key.
func (s *Store) Push(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.push(key, value)
}

// Extend appends all values to the list stored under key.
func (s *Store) Extend(_ context.Context, key string, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range values {
		if err := s.push(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, leaf, ok := s.walk(key, false)
	if !ok {
		return false, nil
	}
	_, exists := parent[leaf]
	return exists, nil
}

// push appends value under key. Caller holds the write lock.
func (s *Store) push(key string, value any) error {
	parent, leaf, _ := s.walk(key, true)
	list, _ := parent[leaf].([]any)
	parent[leaf] = append(list, value)
	return nil
}

// walk descends the dotted key path and returns the map containing the
// final segment plus the segment itself. With create set, missing
// intermediate maps are created; otherwise walk reports false when the
// path does not exist. Caller holds the appropriate lock.
func (s *Store) walk(key string, create bool) (map[string]any, string, bool) {
	segments := strings.Split(key, ".")
	cur := s.doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			if !create {
				return nil, "", false
			}
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur, segments[len(segments)-1], true
}
