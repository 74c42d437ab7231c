package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/usecase"
)

func TestMovieHandler_List(t *testing.T) {
	mock := &mockRecommendService{
		listTitlesFn: func() []string {
			return []string{"Heat (1995)", "Jumanji (1995)", "Toy Story (1995)"}
		},
	}
	h := NewMovieHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/v1/movies", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v", rec.Code, http.StatusOK)
	}

	var resp MovieListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("Count = %v, want 3", resp.Count)
	}
	if len(resp.Movies) != 3 || resp.Movies[0] != "Heat (1995)" {
		t.Errorf("Movies = %v", resp.Movies)
	}
}

func TestMovieHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		movieID        string
		setupMock      func(m *mockRecommendService)
		wantStatusCode int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:    "found",
			movieID: "2",
			setupMock: func(m *mockRecommendService) {
				m.getMovieFn = func(ctx context.Context, movieID int) (*usecase.MovieView, error) {
					if movieID != 2 {
						t.Errorf("movieID = %v, want 2", movieID)
					}
					return &usecase.MovieView{
						MovieID:   2,
						Title:     "Jumanji (1995)",
						Genres:    "Adventure|Children|Fantasy",
						PosterURL: "https://image.tmdb.org/t/p/w342/jumanji.jpg",
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var resp MovieResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.MovieID != 2 || resp.Title != "Jumanji (1995)" {
					t.Errorf("response = %+v", resp)
				}
				if resp.Genres != "Adventure|Children|Fantasy" {
					t.Errorf("Genres = %v, want pipe-joined string", resp.Genres)
				}
				if resp.Overview != nil {
					t.Errorf("Overview = %v, want null when no metadata", resp.Overview)
				}
			},
		},
		{
			name:           "non-integer id",
			movieID:        "abc",
			setupMock:      func(m *mockRecommendService) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:    "not found",
			movieID: "999",
			setupMock: func(m *mockRecommendService) {
				m.getMovieFn = func(ctx context.Context, movieID int) (*usecase.MovieView, error) {
					return nil, fmt.Errorf("%w: id %d", repository.ErrMovieNotFound, movieID)
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRecommendService{}
			tt.setupMock(mock)
			h := NewMovieHandler(mock)

			r := chi.NewRouter()
			r.Get("/v1/movies/{id}", h.Get)

			req := httptest.NewRequest(http.MethodGet, "/v1/movies/"+tt.movieID, nil)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status code = %v, want %v", rec.Code, tt.wantStatusCode)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec.Body.Bytes())
			}
		})
	}
}

func TestMovieHandler_ModelInfo(t *testing.T) {
	mock := &mockRecommendService{
		modelInfoFn: func() usecase.ModelInfo {
			return usecase.ModelInfo{
				MovieCount:     4803,
				MatrixSize:     4803,
				VocabularySize: 5000,
			}
		},
	}
	h := NewMovieHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/v1/model", nil)
	rec := httptest.NewRecorder()

	h.ModelInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v", rec.Code, http.StatusOK)
	}

	var resp ModelInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.MovieCount != 4803 || resp.MatrixSize != 4803 || resp.VocabularySize != 5000 {
		t.Errorf("response = %+v", resp)
	}
}
