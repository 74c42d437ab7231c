package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/usecase"
)

// Request/Response types

type RecommendRequest struct {
	MovieTitle         string `json:"movie_title"`
	NumRecommendations int    `json:"num_recommendations"`
}

// MovieResponse renders an enriched movie. Genres is the dataset's
// pipe-joined form; metadata fields are null when no metadata is known.
type MovieResponse struct {
	MovieID     int      `json:"movieId"`
	Title       string   `json:"title"`
	Genres      string   `json:"genres"`
	PosterURL   string   `json:"poster_url"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	Rating      *float64 `json:"rating"`
}

type RecommendedMovieResponse struct {
	MovieResponse
	Similarity    float64 `json:"similarity"`
	SimilarityPct float64 `json:"similarity_pct"`
}

// RecommendResponse echoes the query title and lists the enriched neighbors.
type RecommendResponse struct {
	Success         bool                       `json:"success"`
	Movie           string                     `json:"movie"`
	Recommendations []RecommendedMovieResponse `json:"recommendations"`
}

// RecommendHandler handles recommendation HTTP requests.
type RecommendHandler struct {
	svc usecase.RecommendService
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(svc usecase.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

// Recommend handles POST /v1/recommendations
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	output, err := h.svc.Recommend(r.Context(), usecase.RecommendInput{
		MovieTitle:         req.MovieTitle,
		NumRecommendations: req.NumRecommendations,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := RecommendResponse{
		Success:         true,
		Movie:           output.Movie.Title,
		Recommendations: make([]RecommendedMovieResponse, len(output.Recommendations)),
	}
	for i, rec := range output.Recommendations {
		resp.Recommendations[i] = RecommendedMovieResponse{
			MovieResponse: toMovieResponse(rec.MovieView),
			Similarity:    rec.Similarity,
			SimilarityPct: rec.SimilarityPct,
		}
	}

	JSON(w, http.StatusOK, resp)
}

func (h *RecommendHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		Error(w, http.StatusNotFound, "movie_not_found", "Movie not found in catalog")
	case errors.Is(err, usecase.ErrEmptyMovieTitle):
		Error(w, http.StatusBadRequest, "invalid_movie_title", "Movie title cannot be empty")
	case errors.Is(err, usecase.ErrInvalidRecommendationCount):
		Error(w, http.StatusBadRequest, "invalid_num_recommendations", "Recommendation count must not be negative")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toMovieResponse(v usecase.MovieView) MovieResponse {
	return MovieResponse{
		MovieID:     v.MovieID,
		Title:       v.Title,
		Genres:      v.Genres,
		PosterURL:   v.PosterURL,
		Overview:    nullableString(v.Overview),
		ReleaseDate: nullableString(v.ReleaseDate),
		Rating:      nullableFloat(v.Rating),
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
