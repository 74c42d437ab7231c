// Package recommender implements the content-similarity recommendation core:
// an immutable movie catalog, a precomputed dense similarity matrix, and the
// top-K ranking engine over them.
package recommender

import (
	"errors"
	"sort"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

var ErrEmptyCatalog = errors.New("catalog contains no movies")

// Catalog is the ordered, read-only movie collection. The position of a movie
// in the catalog is its row/column index in the similarity matrix.
// Safe for concurrent use after construction.
type Catalog struct {
	movies  []model.Movie
	byTitle map[string]int
	byID    map[int]int
}

// NewCatalog builds the catalog and its lookup indexes.
// Titles are assumed unique; when duplicates occur the first occurrence wins.
func NewCatalog(movies []model.Movie) (*Catalog, error) {
	if len(movies) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		movies:  movies,
		byTitle: make(map[string]int, len(movies)),
		byID:    make(map[int]int, len(movies)),
	}
	for i, m := range movies {
		if _, exists := c.byTitle[m.Title]; !exists {
			c.byTitle[m.Title] = i
		}
		if _, exists := c.byID[m.ID]; !exists {
			c.byID[m.ID] = i
		}
	}
	return c, nil
}

// Size returns the number of movies in the catalog.
func (c *Catalog) Size() int {
	return len(c.movies)
}

// At returns the movie at catalog position i. i must be in [0, Size).
func (c *Catalog) At(i int) model.Movie {
	return c.movies[i]
}

// IndexOf resolves an exact, case-sensitive title to its catalog position.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.byTitle[title]
	return i, ok
}

// ByID resolves a dataset movie ID to its catalog entry.
func (c *Catalog) ByID(id int) (model.Movie, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Movie{}, false
	}
	return c.movies[i], true
}

// Titles returns all catalog titles sorted lexicographically.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	sort.Strings(titles)
	return titles
}
