package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/mocks"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/review"
)

type reviewFixture struct {
	repo      *mocks.ReviewRepository
	cache     *mocks.Cache
	publisher *mocks.EventPublisher
	handler   *ReviewHandler
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		repo:      new(mocks.ReviewRepository),
		cache:     new(mocks.Cache),
		publisher: new(mocks.EventPublisher),
	}
	f.publisher.On("Publish", mock.Anything, review.Subject, mock.Anything).Return(nil).Maybe()
	f.cache.On("InvalidateMovie", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.cache.On("InvalidateReviewsList", mock.Anything, mock.Anything).Return(nil).Maybe()

	log := logger.New("test")
	f.handler = NewReviewHandler(review.NewService(f.repo, f.cache, f.publisher, log), log)
	return f
}

func reviewRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestReviewHandler_Create_Success(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()
	userID := uuid.New()

	req := reviewRequest(t, http.MethodPost, "/api/v1/movies/"+movieID.String()+"/reviews", ReviewRequest{
		Content: "Tense and beautifully shot",
		Rating:  5,
	})
	req = withUser(withURLParam(req, "id", movieID.String()), userID)
	w := httptest.NewRecorder()

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.UserID == userID && r.MovieID == movieID && r.Rating == 5
	})).Return(nil)

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.repo.AssertExpectations(t)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(5), data["rating"])
	assert.Equal(t, false, data["is_top_comment"])
}

func TestReviewHandler_Create_Duplicate(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()
	userID := uuid.New()

	req := reviewRequest(t, http.MethodPost, "/api/v1/movies/"+movieID.String()+"/reviews", ReviewRequest{
		Content: "Second thoughts",
		Rating:  3,
	})
	req = withUser(withURLParam(req, "id", movieID.String()), userID)
	w := httptest.NewRecorder()

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).
		Return(&domain.Review{ID: uuid.New(), UserID: userID, MovieID: movieID}, nil)

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already reviewed this movie, edit your review instead", decodeBody(t, w)["error"])
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewHandler_Create_ValidationError(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()

	req := reviewRequest(t, http.MethodPost, "/api/v1/movies/"+movieID.String()+"/reviews", ReviewRequest{
		Content: "Rating out of range",
		Rating:  6,
	})
	req = withUser(withURLParam(req, "id", movieID.String()), uuid.New())
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", decodeBody(t, w)["error"])
}

func TestReviewHandler_Create_MovieNotFound(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()
	userID := uuid.New()

	req := reviewRequest(t, http.MethodPost, "/api/v1/movies/"+movieID.String()+"/reviews", ReviewRequest{
		Content: "Does it exist?",
		Rating:  2,
	})
	req = withUser(withURLParam(req, "id", movieID.String()), userID)
	w := httptest.NewRecorder()

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrNotFound)

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Review or movie not found", decodeBody(t, w)["error"])
}

func TestReviewHandler_Create_RequiresIdentity(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()

	req := reviewRequest(t, http.MethodPost, "/api/v1/movies/"+movieID.String()+"/reviews", ReviewRequest{Content: "x", Rating: 1})
	req = withURLParam(req, "id", movieID.String())
	w := httptest.NewRecorder()

	f.handler.Create(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewHandler_Update_Forbidden(t *testing.T) {
	f := newReviewFixture()
	reviewID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()

	req := reviewRequest(t, http.MethodPut, "/api/v1/reviews/"+reviewID.String(), ReviewRequest{Content: "Mine now", Rating: 1})
	req = withUser(withURLParam(req, "id", reviewID.String()), intruder)
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, reviewID).
		Return(&domain.Review{ID: reviewID, UserID: owner, MovieID: uuid.New(), Content: "Original", Rating: 4}, nil)

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReviewHandler_Update_Success(t *testing.T) {
	f := newReviewFixture()
	reviewID := uuid.New()
	owner := uuid.New()
	content := strings.Repeat("a thoughtful line ", 10)

	req := reviewRequest(t, http.MethodPut, "/api/v1/reviews/"+reviewID.String(), ReviewRequest{Content: content, Rating: 4})
	req = withUser(withURLParam(req, "id", reviewID.String()), owner)
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, reviewID).
		Return(&domain.Review{ID: reviewID, UserID: owner, MovieID: uuid.New(), Content: "Short", Rating: 2}, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.Content == content && r.Rating == 4
	})).Return(nil)

	f.handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.repo.AssertExpectations(t)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["is_top_comment"])
}

func TestReviewHandler_Delete(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name       string
		actor      uuid.UUID
		found      bool
		wantStatus int
	}{
		{"owner deletes", owner, true, http.StatusNoContent},
		{"other user", uuid.New(), true, http.StatusForbidden},
		{"missing review", owner, false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture()
			reviewID := uuid.New()

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+reviewID.String(), nil)
			req = withUser(withURLParam(req, "id", reviewID.String()), tt.actor)
			w := httptest.NewRecorder()

			if tt.found {
				f.repo.On("GetByID", mock.Anything, reviewID).
					Return(&domain.Review{ID: reviewID, UserID: owner, MovieID: uuid.New()}, nil)
				f.repo.On("Delete", mock.Anything, reviewID).Return(nil).Maybe()
			} else {
				f.repo.On("GetByID", mock.Anything, reviewID).Return(nil, domain.ErrNotFound)
			}

			f.handler.Delete(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestReviewHandler_ToggleLike(t *testing.T) {
	f := newReviewFixture()
	reviewID := uuid.New()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/"+reviewID.String()+"/like", nil)
	req = withUser(withURLParam(req, "id", reviewID.String()), userID)
	w := httptest.NewRecorder()

	f.repo.On("GetByID", mock.Anything, reviewID).Return(&domain.Review{ID: reviewID, MovieID: uuid.New()}, nil)
	f.repo.On("ToggleLike", mock.Anything, userID, reviewID).
		Return(&domain.LikeResult{ReviewID: reviewID, Liked: true, LikeCount: 1}, nil)

	f.handler.ToggleLike(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["liked"])
	assert.Equal(t, float64(1), data["like_count"])
}

func TestReviewHandler_ListByMovie_CacheMiss(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()
	reviews := []*domain.Review{
		{ID: uuid.New(), MovieID: movieID, Content: "Good", Rating: 4, LikeCount: 5},
		{ID: uuid.New(), MovieID: movieID, Content: "Fine", Rating: 3},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String()+"/reviews?limit=10&offset=0", nil)
	req = withURLParam(req, "id", movieID.String())
	w := httptest.NewRecorder()

	f.cache.On("GetReviewsList", mock.Anything, movieID, 10, 0).Return(nil, domain.ErrNotFound)
	f.repo.On("GetByMovieID", mock.Anything, movieID, 10, 0).Return(reviews, nil)
	f.cache.On("SetReviewsList", mock.Anything, movieID, 10, 0, reviews).Return(nil)
	f.repo.On("CountByMovieID", mock.Anything, movieID).Return(2, nil)

	f.handler.ListByMovie(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)

	body := decodeBody(t, w)
	data := body["data"].([]any)
	assert.Len(t, data, 2)
	assert.Equal(t, true, data[0].(map[string]any)["is_top_comment"])
	assert.Equal(t, false, data[1].(map[string]any)["is_top_comment"])
}

func TestReviewHandler_ListByMovie_RepositoryError(t *testing.T) {
	f := newReviewFixture()
	movieID := uuid.New()

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/movies/"+movieID.String()+"/reviews", nil), "id", movieID.String())
	w := httptest.NewRecorder()

	f.cache.On("GetReviewsList", mock.Anything, movieID, 20, 0).Return(nil, domain.ErrNotFound)
	f.repo.On("GetByMovieID", mock.Anything, movieID, 20, 0).Return(nil, fmt.Errorf("database error"))

	f.handler.ListByMovie(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
