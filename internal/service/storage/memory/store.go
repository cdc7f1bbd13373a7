// Package memory provides an in-process object store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"call-summary-service/internal/service/storage"
)

// Store implements storage.Store over a map. Listing is lexicographic, like S3.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	puts    int
}

// New creates an empty store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string][]byte)}
}

// Get returns a copy of the object body.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, storage.ErrNotFound)
	}
	return append([]byte(nil), body...), nil
}

// List returns sorted keys under prefix, at most maxKeys when maxKeys > 0.
func (s *Store) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.buckets[bucket] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if maxKeys > 0 && len(keys) > maxKeys {
		keys = keys[:maxKeys]
	}
	return keys, nil
}

// Put stores a copy of body, overwriting any existing object.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[bucket] = b
	}
	b[key] = append([]byte(nil), body...)
	s.puts++
	return nil
}

// Puts returns the number of Put calls served.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Len returns the number of objects in bucket.
func (s *Store) Len(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[bucket])
}
