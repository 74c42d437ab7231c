package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

// MetadataCache defines the interface for the shared metadata cache tier.
// Implementations should handle serialization/deserialization transparently.
type MetadataCache interface {
	// Get retrieves metadata for a title.
	// Returns nil, nil if the title is not cached (cache miss).
	Get(ctx context.Context, title string) (*model.Metadata, error)

	// Set stores metadata for a title with the specified TTL.
	Set(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error
}
