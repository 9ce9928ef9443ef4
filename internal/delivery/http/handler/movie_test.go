package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/movie_store/internal/delivery/http/middleware"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/mocks"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/catalog"
	"github.com/Pesokrava/movie_store/internal/usecase/review"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), middleware.Identity{UserID: userID})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type movieFixture struct {
	movies  *mocks.MovieRepository
	reviews *mocks.ReviewRepository
	cache   *mocks.Cache
	handler *MovieHandler
}

func newMovieFixture() *movieFixture {
	f := &movieFixture{
		movies:  new(mocks.MovieRepository),
		reviews: new(mocks.ReviewRepository),
		cache:   new(mocks.Cache),
	}
	log := logger.New("test")
	publisher := new(mocks.EventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	catalogService := catalog.NewService(f.movies, f.cache, log, 10)
	reviewService := review.NewService(f.reviews, f.cache, publisher, log)
	f.handler = NewMovieHandler(catalogService, reviewService, log)
	return f
}

func TestMovieHandler_List_Success(t *testing.T) {
	f := newMovieFixture()

	movies := []*domain.Movie{
		{ID: uuid.New(), Title: "Alien", Price: decimal.RequireFromString("9.99")},
		{ID: uuid.New(), Title: "Aliens", Price: decimal.RequireFromString("12.50")},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies?search=alien&limit=10&offset=0", nil)
	w := httptest.NewRecorder()

	matchFilter := mock.MatchedBy(func(f domain.MovieFilter) bool {
		return f.Search == "alien" && f.Limit == 10 && f.Offset == 0 && f.ExcludeHiddenFor == uuid.Nil
	})
	f.movies.On("List", mock.Anything, matchFilter).Return(movies, nil)
	f.movies.On("Count", mock.Anything, matchFilter).Return(2, nil)

	f.handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.movies.AssertExpectations(t)

	body := decodeBody(t, w)
	assert.Len(t, body["data"], 2)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(10), pagination["limit"])
}

func TestMovieHandler_List_ExcludesHiddenForViewer(t *testing.T) {
	f := newMovieFixture()
	viewer := uuid.New()

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil), viewer)
	w := httptest.NewRecorder()

	matchFilter := mock.MatchedBy(func(f domain.MovieFilter) bool {
		return f.ExcludeHiddenFor == viewer
	})
	f.movies.On("List", mock.Anything, matchFilter).Return([]*domain.Movie{}, nil)
	f.movies.On("Count", mock.Anything, matchFilter).Return(0, nil)

	f.handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.movies.AssertExpectations(t)
}

func TestMovieHandler_List_RepositoryError(t *testing.T) {
	f := newMovieFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
	w := httptest.NewRecorder()

	f.movies.On("List", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("database error"))

	f.handler.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, w)["error"])
}

func TestMovieHandler_GetByID_Anonymous(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()
	movie := &domain.Movie{ID: movieID, Title: "Heat", Price: decimal.RequireFromString("7.99")}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String(), nil), "id", movieID.String())
	w := httptest.NewRecorder()

	f.movies.On("GetByID", mock.Anything, movieID).Return(movie, nil)
	f.cache.On("GetMovieRating", mock.Anything, movieID).Return(4.3, nil)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.reviews.AssertNotCalled(t, "GetByUserAndMovie", mock.Anything, mock.Anything, mock.Anything)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, 4.3, data["average_rating"])
	assert.NotContains(t, data, "user_review")
}

func TestMovieHandler_GetByID_WithViewerReview(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()
	viewer := uuid.New()
	movie := &domain.Movie{ID: movieID, Title: "Heat", Price: decimal.RequireFromString("7.99")}
	own := &domain.Review{ID: uuid.New(), UserID: viewer, MovieID: movieID, Content: "Great", Rating: 5, LikeCount: 3}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String(), nil)
	req = withUser(withURLParam(req, "id", movieID.String()), viewer)
	w := httptest.NewRecorder()

	f.movies.On("GetByID", mock.Anything, movieID).Return(movie, nil)
	f.cache.On("GetMovieRating", mock.Anything, movieID).Return(0.0, domain.ErrNotFound)
	f.movies.On("AverageRating", mock.Anything, movieID).Return(4.5, nil)
	f.cache.On("SetMovieRating", mock.Anything, movieID, 4.5).Return(nil)
	f.reviews.On("GetByUserAndMovie", mock.Anything, viewer, movieID).Return(own, nil)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.movies.AssertExpectations(t)
	f.cache.AssertExpectations(t)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, 4.5, data["average_rating"])
	userReview := data["user_review"].(map[string]any)
	assert.Equal(t, true, userReview["is_top_comment"])
}

func TestMovieHandler_GetByID_ViewerWithoutReview(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()
	viewer := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String(), nil)
	req = withUser(withURLParam(req, "id", movieID.String()), viewer)
	w := httptest.NewRecorder()

	f.movies.On("GetByID", mock.Anything, movieID).Return(&domain.Movie{ID: movieID, Title: "Heat"}, nil)
	f.cache.On("GetMovieRating", mock.Anything, movieID).Return(0.0, nil)
	f.reviews.On("GetByUserAndMovie", mock.Anything, viewer, movieID).Return(nil, domain.ErrNotFound)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decodeBody(t, w)["data"], "user_review")
}

func TestMovieHandler_GetByID_InvalidUUID(t *testing.T) {
	f := newMovieFixture()

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/movies/invalid-uuid", nil), "id", "invalid-uuid")
	w := httptest.NewRecorder()

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid movie ID", decodeBody(t, w)["error"])
}

func TestMovieHandler_GetByID_NotFound(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String(), nil), "id", movieID.String())
	w := httptest.NewRecorder()

	f.movies.On("GetByID", mock.Anything, movieID).Return(nil, domain.ErrNotFound)

	f.handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Movie not found", decodeBody(t, w)["error"])
}

func TestMovieHandler_Purchases(t *testing.T) {
	movieID := uuid.New()

	tests := []struct {
		name       string
		query      string
		setup      func(f *movieFixture)
		wantStatus int
		wantRegion string
		wantTotal  float64
	}{
		{
			name:  "all regions",
			query: "",
			setup: func(f *movieFixture) {
				f.movies.On("GetByID", mock.Anything, movieID).Return(&domain.Movie{ID: movieID}, nil)
				f.movies.On("PurchasedQuantity", mock.Anything, movieID, "").Return(12, nil)
			},
			wantStatus: http.StatusOK,
			wantTotal:  12,
		},
		{
			name:  "region is normalized",
			query: "?region=miami,%20fl",
			setup: func(f *movieFixture) {
				f.movies.On("GetByID", mock.Anything, movieID).Return(&domain.Movie{ID: movieID}, nil)
				f.movies.On("PurchasedQuantity", mock.Anything, movieID, "Miami, FL").Return(4, nil)
			},
			wantStatus: http.StatusOK,
			wantRegion: "miami, fl",
			wantTotal:  4,
		},
		{
			name:       "unknown region",
			query:      "?region=Springfield",
			setup:      func(f *movieFixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "movie not found",
			query: "",
			setup: func(f *movieFixture) {
				f.movies.On("GetByID", mock.Anything, movieID).Return(nil, domain.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMovieFixture()
			tt.setup(f)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String()+"/purchases"+tt.query, nil)
			req = withURLParam(req, "id", movieID.String())
			w := httptest.NewRecorder()

			f.handler.Purchases(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			f.movies.AssertExpectations(t)
			if tt.wantStatus == http.StatusOK {
				data := decodeBody(t, w)["data"].(map[string]any)
				assert.Equal(t, tt.wantTotal, data["purchases"])
				if tt.wantRegion != "" {
					assert.Equal(t, tt.wantRegion, data["region"])
				}
			}
		})
	}
}

func TestMovieHandler_Purchases_UnknownRegionMessage(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String()+"/purchases?region=Springfield", nil)
	req = withURLParam(req, "id", movieID.String())
	w := httptest.NewRecorder()

	f.handler.Purchases(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown region", decodeBody(t, w)["error"])
}

func TestMovieHandler_Create_Success(t *testing.T) {
	f := newMovieFixture()

	body, _ := json.Marshal(CreateMovieRequest{
		Title: "  The Thing  ",
		Price: decimal.RequireFromString("14.99"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.movies.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Movie) bool {
		return m.Title == "The Thing" && m.Price.Equal(decimal.RequireFromString("14.99"))
	})).Return(nil)

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.movies.AssertExpectations(t)
	assert.Contains(t, decodeBody(t, w), "data")
}

func TestMovieHandler_Create_InvalidJSON(t *testing.T) {
	f := newMovieFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, w)["error"])
}

func TestMovieHandler_Create_ValidationError(t *testing.T) {
	f := newMovieFixture()

	body, _ := json.Marshal(CreateMovieRequest{Title: "Free Movie", Price: decimal.Zero})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies", bytes.NewReader(body))
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.movies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMovieHandler_Update_MissingVersion(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()

	body, _ := json.Marshal(UpdateMovieRequest{Title: "Heat", Price: decimal.RequireFromString("5")})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/movies/"+movieID.String(), bytes.NewReader(body)), "id", movieID.String())
	w := httptest.NewRecorder()

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Version is required", decodeBody(t, w)["error"])
}

func TestMovieHandler_Update_Conflict(t *testing.T) {
	f := newMovieFixture()
	movieID := uuid.New()

	body, _ := json.Marshal(UpdateMovieRequest{Title: "Heat", Price: decimal.RequireFromString("5"), Version: 2})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/movies/"+movieID.String(), bytes.NewReader(body)), "id", movieID.String())
	w := httptest.NewRecorder()

	f.movies.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Movie) bool {
		return m.ID == movieID && m.Version == 2
	})).Return(domain.ErrConflict)

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	f.movies.AssertExpectations(t)
}

func TestMovieHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"database error", fmt.Errorf("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMovieFixture()
			movieID := uuid.New()

			req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/movies/"+movieID.String(), nil), "id", movieID.String())
			w := httptest.NewRecorder()

			f.movies.On("Delete", mock.Anything, movieID).Return(tt.repoErr)
			f.cache.On("InvalidateMovie", mock.Anything, movieID).Return(nil).Maybe()

			f.handler.Delete(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			f.movies.AssertExpectations(t)
		})
	}
}
