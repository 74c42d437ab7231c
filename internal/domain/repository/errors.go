package repository

import "errors"

var (
	// ErrMovieNotFound is returned when a title or ID has no catalog entry.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrObjectNotFound is returned when an artifact is absent from object storage.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured artifact bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
