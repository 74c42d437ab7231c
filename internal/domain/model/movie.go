package model

import (
	"errors"
	"strings"
)

// Movie represents one entry in the movie catalog. Movies are created in bulk
// at startup and never mutated afterwards; the slice position a movie is
// loaded into is the index used by the similarity matrix.
type Movie struct {
	ID     int
	Title  string
	Genres []string
}

var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrInvalidMovieID = errors.New("movie ID must be positive")
)

// NewMovie validates and creates a catalog entry.
// genres is the raw pipe-separated tag string from the dataset.
func NewMovie(id int, title, genres string) (Movie, error) {
	if id <= 0 {
		return Movie{}, ErrInvalidMovieID
	}
	if title == "" {
		return Movie{}, ErrEmptyTitle
	}
	return Movie{
		ID:     id,
		Title:  title,
		Genres: ParseGenres(genres),
	}, nil
}

// ParseGenres splits a pipe-separated genre string into an ordered tag list.
// Blank segments are dropped; order is preserved.
func ParseGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			genres = append(genres, p)
		}
	}
	if len(genres) == 0 {
		return nil
	}
	return genres
}

// GenreString returns the genres joined back into the dataset's
// pipe-separated form, as exposed by the API.
func (m Movie) GenreString() string {
	return strings.Join(m.Genres, "|")
}
