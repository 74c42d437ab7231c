package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MovieCatalog implements repository.CatalogSource using PostgreSQL.
// The position column is the similarity matrix index and must be a dense
// 0-based sequence written by the offline training export.
type MovieCatalog struct {
	db DBTX
}

// NewMovieCatalog creates a new MovieCatalog instance.
func NewMovieCatalog(db DBTX) *MovieCatalog {
	return &MovieCatalog{db: db}
}

// LoadMovies reads the full catalog in matrix order.
func (r *MovieCatalog) LoadMovies(ctx context.Context) ([]model.Movie, error) {
	const query = `
		SELECT movie_id, title, genres
		FROM movies
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []model.Movie
	for rows.Next() {
		var (
			id     int
			title  string
			genres *string
		)
		if err := rows.Scan(&id, &title, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}

		var genreStr string
		if genres != nil {
			genreStr = *genres
		}
		movie, err := model.NewMovie(id, title, genreStr)
		if err != nil {
			return nil, fmt.Errorf("invalid movie row %d: %w", id, err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	return movies, nil
}

// Compile-time verification that MovieCatalog implements repository.CatalogSource.
var _ repository.CatalogSource = (*MovieCatalog)(nil)
