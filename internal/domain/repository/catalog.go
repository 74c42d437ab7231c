package repository

import (
	"context"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

// CatalogSource loads the complete movie catalog at startup.
// Implementations are provided by the infrastructure layer (artifact files,
// PostgreSQL). The returned order is significant: position i must correspond
// to row/column i of the similarity matrix.
type CatalogSource interface {
	LoadMovies(ctx context.Context) ([]model.Movie, error)
}
