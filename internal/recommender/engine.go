package recommender

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
)

// ErrDimensionMismatch is returned when the similarity matrix dimension does
// not match the catalog size. This is a fatal startup condition: the service
// must refuse to start rather than serve recommendations from misaligned data.
var ErrDimensionMismatch = errors.New("similarity matrix dimension does not match catalog size")

// Recommendation pairs a catalog movie with its raw similarity score
// relative to the query movie.
type Recommendation struct {
	Movie model.Movie
	Score float64
}

// Engine ranks catalog movies by precomputed similarity.
// Pure read-only lookups; safe for concurrent use.
type Engine struct {
	catalog *Catalog
	matrix  *Matrix
}

// NewEngine validates that catalog and matrix describe the same movie set.
func NewEngine(catalog *Catalog, matrix *Matrix) (*Engine, error) {
	if catalog.Size() != matrix.Size() {
		return nil, fmt.Errorf("%w: catalog=%d matrix=%d", ErrDimensionMismatch, catalog.Size(), matrix.Size())
	}
	return &Engine{catalog: catalog, matrix: matrix}, nil
}

// Recommend returns up to k movies most similar to the given title, sorted by
// descending score. The title must match a catalog entry exactly
// (case-sensitive); otherwise repository.ErrMovieNotFound is returned.
//
// Ordering is deterministic: ties are broken by catalog position (stable sort
// over the row in catalog order). The query movie itself is excluded wherever
// it ranks, so the result is correct even when another movie scores higher
// than the query's self-similarity.
func (e *Engine) Recommend(title string, k int) ([]Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryIdx, ok := e.catalog.IndexOf(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", repository.ErrMovieNotFound, title)
	}

	row := e.matrix.Row(queryIdx)

	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return row[order[a]] > row[order[b]]
	})

	if k > e.catalog.Size()-1 {
		k = e.catalog.Size() - 1
	}

	recs := make([]Recommendation, 0, k)
	for _, idx := range order {
		if idx == queryIdx {
			continue
		}
		recs = append(recs, Recommendation{
			Movie: e.catalog.At(idx),
			Score: row[idx],
		})
		if len(recs) == k {
			break
		}
	}
	return recs, nil
}

// Catalog exposes the engine's catalog for listing and ID lookups.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}
