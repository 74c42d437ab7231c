package repository

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for the artifact object store.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Download retrieves an artifact from the store.
	// Caller is responsible for closing the returned ReadCloser.
	// Returns ErrObjectNotFound if the key does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Upload stores an artifact. Used when publishing refreshed model
	// artifacts from offline training.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Exists checks whether an artifact exists in the store.
	Exists(ctx context.Context, key string) (bool, error)
}
