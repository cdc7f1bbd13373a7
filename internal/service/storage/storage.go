// Package storage defines the object storage collaborator used by the pipeline.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Store is a bucket/key object store (S3 or an in-process substitute).
type Store interface {
	// Get returns the object body, or ErrNotFound.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// List returns keys under prefix in provider order (lexicographic for S3).
	// maxKeys bounds the result to a single page; maxKeys <= 0 lists every key.
	List(ctx context.Context, bucket, prefix string, maxKeys int) ([]string, error)

	// Put writes body at key, overwriting any existing object.
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}
