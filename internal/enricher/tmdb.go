package enricher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

// ErrNoResults is returned when the search produced no matches.
// Callers treat it the same as any other lookup failure: no metadata.
var ErrNoResults = errors.New("metadata search returned no results")

// MetadataClient is the external-call boundary of the enricher. It returns an
// explicit result-or-error so the degrade-to-empty mapping happens in exactly
// one place (the Enricher), not inside the transport.
type MetadataClient interface {
	Search(ctx context.Context, query string) (model.Metadata, error)
}

// TMDBClientConfig holds configuration for the TMDB search client.
type TMDBClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultTMDBClientConfig returns the default configuration.
// The 5s timeout is the only failure bound on enrichment: no retries.
func DefaultTMDBClientConfig(apiKey string) TMDBClientConfig {
	return TMDBClientConfig{
		BaseURL: "https://api.themoviedb.org/3",
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	}
}

// TMDBClient implements MetadataClient against the TMDB movie search API.
type TMDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTMDBClient creates a TMDB search client with its own timeout-bound
// http.Client.
func NewTMDBClient(cfg TMDBClientConfig) *TMDBClient {
	return &TMDBClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type searchResponse struct {
	Results []struct {
		PosterPath   string  `json:"poster_path"`
		BackdropPath string  `json:"backdrop_path"`
		Overview     string  `json:"overview"`
		ReleaseDate  string  `json:"release_date"`
		VoteAverage  float64 `json:"vote_average"`
		Popularity   float64 `json:"popularity"`
	} `json:"results"`
}

// Search issues a single search request and returns the first match.
// The API's own relevance ranking is authoritative; no local re-ranking.
func (c *TMDBClient) Search(ctx context.Context, query string) (model.Metadata, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "false")

	searchURL := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Metadata{}, fmt.Errorf("metadata search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Metadata{}, fmt.Errorf("metadata search: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Metadata{}, fmt.Errorf("decode search response: %w", err)
	}

	if len(body.Results) == 0 {
		return model.Metadata{}, fmt.Errorf("%w: %q", ErrNoResults, query)
	}

	first := body.Results[0]
	return model.Metadata{
		PosterPath:   first.PosterPath,
		BackdropPath: first.BackdropPath,
		Overview:     first.Overview,
		ReleaseDate:  first.ReleaseDate,
		VoteAverage:  first.VoteAverage,
		Popularity:   first.Popularity,
	}, nil
}

// Compile-time verification that TMDBClient implements MetadataClient.
var _ MetadataClient = (*TMDBClient)(nil)
