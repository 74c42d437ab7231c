package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/enricher"
	"github.com/hszk-dev/cinematch/internal/infrastructure/metrics"
	"github.com/hszk-dev/cinematch/internal/recommender"
)

// DefaultRecommendationCount is used when a request does not specify one.
const DefaultRecommendationCount = 10

var (
	// ErrEmptyMovieTitle is returned when the query title is blank.
	ErrEmptyMovieTitle = errors.New("movie title must not be empty")

	// ErrInvalidRecommendationCount is returned when the requested count is
	// negative.
	ErrInvalidRecommendationCount = errors.New("invalid recommendation count")
)

// MetadataEnricher resolves display metadata for a movie title.
// Implementations never fail the caller: a lookup that cannot be served
// yields the zero Metadata.
type MetadataEnricher interface {
	Enrich(ctx context.Context, title string) model.Metadata
}

// RecommendInput contains the input parameters for a recommendation request.
type RecommendInput struct {
	MovieTitle string
	// NumRecommendations of 0 means DefaultRecommendationCount.
	NumRecommendations int
}

// MovieView is a catalog movie decorated with display metadata.
// Genres carries the dataset's pipe-separated form, which is also the wire
// format.
type MovieView struct {
	MovieID     int
	Title       string
	Genres      string
	PosterURL   string
	Overview    string
	ReleaseDate string
	Rating      float64
}

// RecommendedMovie is a MovieView with its similarity to the query movie.
type RecommendedMovie struct {
	MovieView
	Similarity    float64
	SimilarityPct float64
}

// RecommendOutput contains the resolved query movie and its enriched
// neighbors. The query movie itself is not enriched: the response only
// echoes its title.
type RecommendOutput struct {
	Movie           model.Movie
	Recommendations []RecommendedMovie
}

// ModelInfo describes the loaded recommendation model.
type ModelInfo struct {
	MovieCount     int
	MatrixSize     int
	VocabularySize int
}

// RecommendService defines the interface for recommendation business logic.
type RecommendService interface {
	// Recommend returns the movies most similar to the given title, each
	// enriched with display metadata.
	Recommend(ctx context.Context, input RecommendInput) (*RecommendOutput, error)

	// GetMovie retrieves a single enriched movie by catalog ID.
	GetMovie(ctx context.Context, movieID int) (*MovieView, error)

	// ListTitles returns all catalog titles in sorted order.
	ListTitles() []string

	// ModelInfo reports the dimensions of the loaded model.
	ModelInfo() ModelInfo
}

// RecommendServiceConfig holds configuration for RecommendService.
type RecommendServiceConfig struct {
	// ImageBaseURL prefixes poster paths returned by the metadata provider.
	ImageBaseURL string
	// EnrichConcurrency bounds parallel metadata lookups per request.
	EnrichConcurrency int
}

// DefaultRecommendServiceConfig returns the default configuration.
func DefaultRecommendServiceConfig() RecommendServiceConfig {
	return RecommendServiceConfig{
		ImageBaseURL:      "https://image.tmdb.org/t/p/w342",
		EnrichConcurrency: 4,
	}
}

type recommendService struct {
	engine   *recommender.Engine
	enricher MetadataEnricher

	vocabularySize    int
	imageBaseURL      string
	enrichConcurrency int
}

// NewRecommendService creates a new RecommendService instance.
// vocabularySize may be 0 when the vectorizer vocabulary artifact is absent.
func NewRecommendService(
	engine *recommender.Engine,
	metadataEnricher MetadataEnricher,
	vocabularySize int,
	cfg RecommendServiceConfig,
) RecommendService {
	concurrency := cfg.EnrichConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &recommendService{
		engine:            engine,
		enricher:          metadataEnricher,
		vocabularySize:    vocabularySize,
		imageBaseURL:      cfg.ImageBaseURL,
		enrichConcurrency: concurrency,
	}
}

// Recommend ranks neighbors of the query title and enriches the result set.
func (s *recommendService) Recommend(ctx context.Context, input RecommendInput) (*RecommendOutput, error) {
	title := strings.TrimSpace(input.MovieTitle)
	if title == "" {
		return nil, ErrEmptyMovieTitle
	}

	k := input.NumRecommendations
	if k == 0 {
		k = DefaultRecommendationCount
	}
	// No upper bound here: the engine clamps the count to the catalog size,
	// which also bounds the enrichment fan-out.
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecommendationCount, input.NumRecommendations)
	}

	recs, err := s.engine.Recommend(title, k)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			metrics.RecommendationsTotal.WithLabelValues(metrics.RecommendStatusNotFound).Inc()
		} else {
			metrics.RecommendationsTotal.WithLabelValues(metrics.RecommendStatusError).Inc()
		}
		return nil, err
	}

	queryIdx, _ := s.engine.Catalog().IndexOf(title)

	out := &RecommendOutput{
		Movie:           s.engine.Catalog().At(queryIdx),
		Recommendations: make([]RecommendedMovie, len(recs)),
	}

	// Metadata lookups are independent; fan out with a bounded group.
	// Enrichment never errors, so the group only propagates ctx cancellation.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichConcurrency)

	for i, rec := range recs {
		g.Go(func() error {
			out.Recommendations[i] = RecommendedMovie{
				MovieView:     s.buildView(gctx, rec.Movie),
				Similarity:    rec.Score,
				SimilarityPct: math.Round(rec.Score*1000) / 10,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecommendationsTotal.WithLabelValues(metrics.RecommendStatusError).Inc()
		return nil, fmt.Errorf("enrich recommendations: %w", err)
	}

	metrics.RecommendationsTotal.WithLabelValues(metrics.RecommendStatusOK).Inc()
	return out, nil
}

// GetMovie retrieves a single enriched movie by catalog ID.
func (s *recommendService) GetMovie(ctx context.Context, movieID int) (*MovieView, error) {
	movie, ok := s.engine.Catalog().ByID(movieID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", repository.ErrMovieNotFound, movieID)
	}
	view := s.buildView(ctx, movie)
	return &view, nil
}

// ListTitles returns all catalog titles in sorted order.
func (s *recommendService) ListTitles() []string {
	return s.engine.Catalog().Titles()
}

// ModelInfo reports the dimensions of the loaded model.
func (s *recommendService) ModelInfo() ModelInfo {
	return ModelInfo{
		MovieCount:     s.engine.Catalog().Size(),
		MatrixSize:     s.engine.Catalog().Size(),
		VocabularySize: s.vocabularySize,
	}
}

// buildView decorates a catalog movie with metadata, substituting a
// placeholder poster when the provider has none.
func (s *recommendService) buildView(ctx context.Context, movie model.Movie) MovieView {
	meta := s.enricher.Enrich(ctx, movie.Title)

	posterURL := meta.PosterURL(s.imageBaseURL)
	if posterURL == "" {
		posterURL = enricher.PlaceholderPosterURL(movie.Title)
	}

	return MovieView{
		MovieID:     movie.ID,
		Title:       movie.Title,
		Genres:      movie.GenreString(),
		PosterURL:   posterURL,
		Overview:    meta.Overview,
		ReleaseDate: meta.ReleaseDate,
		Rating:      meta.VoteAverage,
	}
}
