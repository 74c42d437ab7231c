package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/usecase"
)

type MovieListResponse struct {
	Movies []string `json:"movies"`
	Count  int      `json:"count"`
}

type ModelInfoResponse struct {
	MovieCount     int `json:"movie_count"`
	MatrixSize     int `json:"matrix_size"`
	VocabularySize int `json:"vocabulary_size"`
}

// MovieHandler handles catalog browsing HTTP requests.
type MovieHandler struct {
	svc usecase.RecommendService
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc usecase.RecommendService) *MovieHandler {
	return &MovieHandler{svc: svc}
}

// List handles GET /v1/movies
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	titles := h.svc.ListTitles()
	JSON(w, http.StatusOK, MovieListResponse{
		Movies: titles,
		Count:  len(titles),
	})
}

// Get handles GET /v1/movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_movie_id", "Movie ID must be an integer")
		return
	}

	view, err := h.svc.GetMovie(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			Error(w, http.StatusNotFound, "movie_not_found", "Movie not found in catalog")
			return
		}
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	JSON(w, http.StatusOK, toMovieResponse(*view))
}

// ModelInfo handles GET /v1/model
func (h *MovieHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	info := h.svc.ModelInfo()
	JSON(w, http.StatusOK, ModelInfoResponse{
		MovieCount:     info.MovieCount,
		MatrixSize:     info.MatrixSize,
		VocabularySize: info.VocabularySize,
	})
}
